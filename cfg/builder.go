package cfg

import "github.com/parastat/parastat/ir"

// pendingCall records a call site whose callee-subgraph link is made later:
// every call is recorded, whether or not the callee's own Build has run;
// ResolveCalls wires it up (or falls back to the external sentinel) once
// every function body in the program has been built.
type pendingCall struct {
	callBlock, retBlock string
	calleeRoot          ir.Addr
	calleeKey           string
	resolved            bool
}

type builder struct {
	g       *Graph
	m       *ir.Manager
	o       buildOptions
	pending *[]pendingCall
}

// Build runs recursive-descent construction over root's statement sequence,
// registering a new SubGraph in g keyed by root's address string, and
// returns that SubGraph.
func Build(g *Graph, m *ir.Manager, root ir.Addr, opts ...Option) (*SubGraph, error) {
	rootNode := m.Node(root)
	if rootNode == nil {
		return nil, ErrRootNotFound
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	b := &builder{g: g, m: m, o: o, pending: &[]pendingCall{}}

	entry := g.addBlock(&Block{ID: g.newBlockID("entry"), Kind: KindEntry})
	exit := g.addBlock(&Block{ID: g.newBlockID("exit"), Kind: KindExit})

	stmts := statementSequence(rootNode)
	tails, err := b.buildSeq(entry.ID, stmts)
	if err != nil {
		return nil, err
	}
	for _, t := range tails {
		g.addEdge(Edge{From: t, To: exit.ID})
	}

	sg := &SubGraph{Entry: entry.ID, Exit: exit.ID}
	g.mu.Lock()
	g.subgraphs[root.String()] = sg
	g.mu.Unlock()

	for _, p := range *b.pending {
		g.mu.Lock()
		g.pendingCalls = append(g.pendingCalls, p)
		g.mu.Unlock()
	}
	return sg, nil
}

// statementSequence returns the ordered statements a function body (or
// nested block) consists of: a KindCompound's operands, or the single node
// itself when it is not a compound.
func statementSequence(n *ir.Node) []ir.Addr {
	if n.Kind == ir.KindCompound {
		return n.Operands
	}
	return []ir.Addr{n.Addr}
}

// buildSeq lays out stmts as blocks chained from "from", returning the IDs
// of every block the sequence can fall out of (more than one when the last
// statement is a branch whose arms don't all terminate, conceptually; this
// builder always joins branches so in practice it returns exactly one
// tail, but the slice form keeps the contract honest).
func (b *builder) buildSeq(from string, stmts []ir.Addr) ([]string, error) {
	tails := []string{from}
	var cur *Block

	flush := func() {
		if cur == nil {
			return
		}
		for _, t := range tails {
			b.g.addEdge(Edge{From: t, To: cur.ID})
		}
		tails = []string{cur.ID}
		cur = nil
	}
	freshAccumulator := func() {
		cur = b.g.addBlock(&Block{ID: b.g.newBlockID("blk"), Kind: KindDefault})
	}

	for _, addr := range stmts {
		n := b.m.Node(addr)
		if n == nil {
			continue
		}
		switch n.Kind {
		case ir.KindIf:
			flush()
			newTails, err := b.buildIf(tails, n)
			if err != nil {
				return nil, err
			}
			tails = newTails
		case ir.KindFor, ir.KindWhile:
			flush()
			newTails, err := b.buildLoop(tails, n)
			if err != nil {
				return nil, err
			}
			tails = newTails
		case ir.KindCall:
			flush()
			newTails, err := b.buildCall(tails, addr, n)
			if err != nil {
				return nil, err
			}
			tails = newTails
		default:
			if cur == nil {
				freshAccumulator()
			}
			cur.Stmts = append(cur.Stmts, addr)
			if b.o.granularity == OneStatementPerBlock {
				flush()
			}
		}
	}
	flush()
	return tails, nil
}

// buildIf wires a two-way branch: cond block (terminator=n), a guarded edge
// into each arm's own entry block (so the guard is recorded even for a
// zero-statement arm), an optional else-branch (falling through to the
// guard's negation directly when absent), and a join block both arms flow
// into.
func (b *builder) buildIf(from []string, n *ir.Node) ([]string, error) {
	cond := b.g.addBlock(&Block{ID: b.g.newBlockID("cond"), Terminator: n.Addr})
	for _, t := range from {
		b.g.addEdge(Edge{From: t, To: cond.ID})
	}

	guard := n.Operands[0]
	thenRoot := n.Operands[1]
	thenEntry := b.g.addBlock(&Block{ID: b.g.newBlockID("then"), Kind: KindDefault})
	b.g.addEdge(Edge{From: cond.ID, To: thenEntry.ID, Guard: guard, GuardNegated: false})
	thenTails, err := b.buildSeq(thenEntry.ID, statementSequence(b.m.Node(thenRoot)))
	if err != nil {
		return nil, err
	}

	var elseTails []string
	if len(n.Operands) > 2 && !n.Operands[2].IsZero() {
		elseRoot := n.Operands[2]
		elseEntry := b.g.addBlock(&Block{ID: b.g.newBlockID("else"), Kind: KindDefault})
		b.g.addEdge(Edge{From: cond.ID, To: elseEntry.ID, Guard: guard, GuardNegated: true})
		elseTails, err = b.buildSeq(elseEntry.ID, statementSequence(b.m.Node(elseRoot)))
		if err != nil {
			return nil, err
		}
	} else {
		elseTails = []string{cond.ID}
	}

	join := b.g.addBlock(&Block{ID: b.g.newBlockID("join"), Kind: KindDefault})
	for _, t := range append(thenTails, elseTails...) {
		if t == cond.ID {
			b.g.addEdge(Edge{From: t, To: join.ID, Guard: guard, GuardNegated: true})
			continue
		}
		b.g.addEdge(Edge{From: t, To: join.ID})
	}
	return []string{join.ID}, nil
}

// buildLoop wires a loop header (terminator=n), a guarded entry edge into
// the body, a back edge from the body to the header, and a guarded exit
// edge.
func (b *builder) buildLoop(from []string, n *ir.Node) ([]string, error) {
	header := b.g.addBlock(&Block{ID: b.g.newBlockID("loop"), Terminator: n.Addr})
	for _, t := range from {
		b.g.addEdge(Edge{From: t, To: header.ID})
	}

	cond := n.Operands[0]
	body := n.Operands[1]
	bodyEntry := b.g.addBlock(&Block{ID: b.g.newBlockID("body"), Kind: KindDefault})
	b.g.addEdge(Edge{From: header.ID, To: bodyEntry.ID, Guard: cond, GuardNegated: false})
	bodyTails, err := b.buildSeq(bodyEntry.ID, statementSequence(b.m.Node(body)))
	if err != nil {
		return nil, err
	}
	for _, t := range bodyTails {
		b.g.addEdge(Edge{From: t, To: header.ID}) // back edge
	}

	exit := b.g.addBlock(&Block{ID: b.g.newBlockID("loopexit"), Kind: KindDefault})
	b.g.addEdge(Edge{From: header.ID, To: exit.ID, Guard: cond, GuardNegated: true})
	return []string{exit.ID}, nil
}

// buildCall wires a call/return block pair. The callee link is recorded as
// pending: at Build time the callee's own SubGraph may not exist yet, so
// ResolveCalls on the shared Graph finishes the wiring once every function
// body in the program has been built.
func (b *builder) buildCall(from []string, addr ir.Addr, n *ir.Node) ([]string, error) {
	call := b.g.addBlock(&Block{ID: b.g.newBlockID("call"), Kind: KindCall, Stmts: []ir.Addr{addr}})
	ret := b.g.addBlock(&Block{ID: b.g.newBlockID("ret"), Kind: KindRet})
	call.Paired = ret.ID
	ret.Paired = call.ID

	for _, t := range from {
		b.g.addEdge(Edge{From: t, To: call.ID})
	}

	calleeRoot, ok := b.o.resolve(addr)
	p := pendingCall{callBlock: call.ID, retBlock: ret.ID}
	if ok {
		p.calleeRoot = calleeRoot
		p.calleeKey = calleeRoot.String()
	}
	*b.pending = append(*b.pending, p)
	return []string{ret.ID}, nil
}

// ResolveCalls finishes every pending call/return link recorded by Build
// calls on g: a call whose callee SubGraph now exists is wired
// call→calleeEntry and calleeExit→ret; anything still unresolved (unknown
// callee, or a resolved-but-not-yet-built root) falls back to the external
// sentinel target.
func (g *Graph) ResolveCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.pendingCalls {
		p := &g.pendingCalls[i]
		if p.resolved {
			continue
		}
		var sg *SubGraph
		if p.calleeKey != "" {
			sg = g.subgraphs[p.calleeKey]
		}
		if sg != nil {
			g.succUnlocked(p.callBlock, Edge{From: p.callBlock, To: sg.Entry})
			g.succUnlocked(sg.Exit, Edge{From: sg.Exit, To: p.retBlock})
		} else {
			g.succUnlocked(p.callBlock, Edge{From: p.callBlock, To: externalID})
			g.succUnlocked(externalID, Edge{From: externalID, To: p.retBlock})
		}
		p.resolved = true
	}
}

func (g *Graph) succUnlocked(from string, e Edge) {
	g.succ[from] = append(g.succ[from], e)
	g.pred[e.To] = append(g.pred[e.To], e)
}
