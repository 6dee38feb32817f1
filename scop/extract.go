package scop

import (
	"github.com/pkg/errors"

	"github.com/parastat/parastat/affine"
	"github.com/parastat/parastat/ir"
)

// scheduleTerm is one row of a statement's schedule before it is converted
// to an affine.Func: either a reference to an enclosing iterator (an
// identity row) or a sequential position among siblings (a constant row).
// Interleaving the two, outer to inner, produces the classical "2d+1"
// polyhedral schedule.
type scheduleTerm struct {
	isIter  bool
	iterIdx int
	constant int64
}

// GetScops returns every maximal SCoP beneath root: a
// maximal region is the outermost ancestor for which Extract succeeds
// whole; when the whole subtree is not affine, the search continues into
// its statement/branch children looking for smaller affine sub-regions,
// never descending further once a region has already been captured.
func GetScops(m *ir.Manager, root ir.Addr) ([]*Scop, error) {
	var scops []*Scop
	var walk func(addr ir.Addr) error
	walk = func(addr ir.Addr) error {
		n := m.Node(addr)
		if n == nil {
			return nil
		}
		s, err := Extract(m, addr)
		if err == nil {
			scops = append(scops, s)
			return nil
		}
		if !errors.Is(err, ErrModelingLimitation) {
			return err
		}
		for _, c := range children(m, n) {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return scops, nil
}

// Extract attempts to build exactly one Scop rooted at addr, failing with
// ErrModelingLimitation the moment anything beneath addr falls outside the
// affine model: a non-affine loop bound or step, a non-affine array
// subscript, or a control construct (KindIf, KindWhile, or a KindFor whose
// header isn't affine) appearing where a leaf statement was expected. Every
// loop bound/step and every memory access's index expression must be affine;
// any other side effect is unmodelable.
func Extract(m *ir.Manager, addr ir.Addr) (*Scop, error) {
	iv := affine.NewIterVector()
	collectIterators(m, addr, iv)
	if iv.NumIterators() == 0 {
		return nil, ErrModelingLimitation
	}
	if err := prewarmParams(m, addr, iv); err != nil {
		return nil, err
	}

	ex := &extractor{m: m, iv: iv}
	stmts, err := ex.walkSeq(statementSeq(m, addr), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nil, ErrModelingLimitation
	}

	s := New(iv, addr)
	for _, st := range stmts {
		if err := s.AddStmt(st); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// collectIterators walks addr's subtree pre-order, appending one iterator
// per KindFor node encountered, in nesting order — a dry run performed
// before any affine.Func is built so the shared vector never grows again
// once extraction starts producing funcs against it (affine.Func assumes
// its vector's shape is stable once built).
func collectIterators(m *ir.Manager, addr ir.Addr, iv *affine.IterVector) {
	n := m.Node(addr)
	if n == nil {
		return
	}
	if n.Kind == ir.KindFor {
		iv.AddIterator(n.Symbol)
	}
	for _, c := range children(m, n) {
		collectIterators(m, c, iv)
	}
}

// prewarmParams walks the same subtree, converting every loop bound and
// every array-access subscript via affine.FromIR purely for its
// parameter-discovery side effect (new program variables are auto-added as
// parameters). By the time the real extraction pass runs, iv is frozen and
// every Func it builds has a stable, final-length coefficient layout.
func prewarmParams(m *ir.Manager, addr ir.Addr, iv *affine.IterVector) error {
	n := m.Node(addr)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ir.KindFor:
		cond := m.Node(n.Operands[0])
		if cond == nil || len(cond.Operands) != 2 {
			return ErrModelingLimitation
		}
		if _, err := affine.FromIR(m, iv, cond.Operands[1]); err != nil {
			return ErrModelingLimitation
		}
		if len(n.Operands) > 2 && !n.Operands[2].IsZero() {
			if _, err := affine.FromIR(m, iv, n.Operands[2]); err != nil {
				return ErrModelingLimitation
			}
		}
	case ir.KindCompound, ir.KindIf, ir.KindWhile:
		// fall through to the generic descent below
	default:
		return prewarmLeaf(m, addr, iv)
	}
	for _, c := range children(m, n) {
		if err := prewarmParams(m, c, iv); err != nil {
			return err
		}
	}
	return nil
}

func prewarmLeaf(m *ir.Manager, addr ir.Addr, iv *affine.IterVector) error {
	var werr error
	ir.Walk(m, addr, ir.Visitor{Default: func(_ *ir.Manager, an *ir.Node) {
		if werr != nil || an.Kind != ir.KindArrayElem {
			return
		}
		for _, sub := range an.Operands[1:] {
			if _, err := affine.FromIR(m, iv, sub); err != nil {
				werr = ErrModelingLimitation
				return
			}
		}
	}})
	return werr
}

// children returns addr's statement/branch children for the generic
// recursive descent used by collectIterators, prewarmParams and GetScops.
// KindFor/KindWhile descend into their (flattened) body only: the loop
// header itself is handled by the caller where relevant, never here.
func children(m *ir.Manager, n *ir.Node) []ir.Addr {
	switch n.Kind {
	case ir.KindCompound:
		return n.Operands
	case ir.KindFor, ir.KindWhile:
		if len(n.Operands) > 1 {
			return statementSeq(m, n.Operands[1])
		}
		return nil
	case ir.KindIf:
		var out []ir.Addr
		if len(n.Operands) > 1 {
			out = append(out, statementSeq(m, n.Operands[1])...)
		}
		if len(n.Operands) > 2 && !n.Operands[2].IsZero() {
			out = append(out, statementSeq(m, n.Operands[2])...)
		}
		return out
	default:
		return nil
	}
}

// statementSeq flattens a body address into its sibling statement list: the
// operands of a KindCompound, or a one-element list otherwise.
func statementSeq(m *ir.Manager, addr ir.Addr) []ir.Addr {
	n := m.Node(addr)
	if n == nil {
		return nil
	}
	if n.Kind == ir.KindCompound {
		return n.Operands
	}
	return []ir.Addr{addr}
}

type extractor struct {
	m      *ir.Manager
	iv     *affine.IterVector
	nextID int
}

// walkSeq extracts every statement in stmts, accumulating domain and
// schedule-prefix from the enclosing loop nest (nil/empty at the top).
func (ex *extractor) walkSeq(stmts []ir.Addr, domain *affine.Combiner, sched []scheduleTerm) ([]*Stmt, error) {
	var out []*Stmt
	for i, addr := range stmts {
		n := ex.m.Node(addr)
		if n == nil {
			continue
		}
		counterSched := append(append([]scheduleTerm{}, sched...), scheduleTerm{constant: int64(i)})
		switch n.Kind {
		case ir.KindFor:
			nested, err := ex.extractLoopNested(addr, domain, counterSched)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case ir.KindWhile, ir.KindIf:
			return nil, ErrModelingLimitation
		default:
			accs, err := extractAccesses(ex.m, ex.iv, addr)
			if err != nil {
				return nil, err
			}
			leafDomain := domain
			if leafDomain == nil {
				leafDomain = affine.Leaf(affine.Constraint{F: zeroFunc(ex.iv), Rel: affine.LE})
			}
			ex.nextID++
			out = append(out, &Stmt{
				ID:       ex.nextID,
				Addr:     addr,
				Domain:   affine.NewDomain(ex.iv, leafDomain),
				Schedule: buildScheduleFunc(ex.iv, counterSched),
				Accesses: accs,
			})
		}
	}
	return out, nil
}

// extractLoopNested extracts a KindFor node: parses its affine header,
// conjoins its bound (and, for a non-unit step, divisibility) constraints
// onto domainPrefix, appends an identity schedule row for its iterator, and
// recurses into its body.
func (ex *extractor) extractLoopNested(addr ir.Addr, domainPrefix *affine.Combiner, schedPrefix []scheduleTerm) ([]*Stmt, error) {
	n := ex.m.Node(addr)
	cond := ex.m.Node(n.Operands[0])
	if cond == nil || len(cond.Operands) != 2 {
		return nil, ErrModelingLimitation
	}
	idx := ex.iv.IteratorIndex(n.Symbol)
	if idx < 0 {
		return nil, ErrModelingLimitation
	}

	upper, err := affine.FromIR(ex.m, ex.iv, cond.Operands[1])
	if err != nil {
		return nil, ErrModelingLimitation
	}
	var lower *affine.Func
	if len(n.Operands) > 2 && !n.Operands[2].IsZero() {
		lower, err = affine.FromIR(ex.m, ex.iv, n.Operands[2])
		if err != nil {
			return nil, ErrModelingLimitation
		}
	} else {
		lower = zeroFunc(ex.iv)
	}
	step := int64(1)
	if len(n.Operands) > 3 && !n.Operands[3].IsZero() {
		stepNode := ex.m.Node(n.Operands[3])
		if stepNode == nil || stepNode.Kind != ir.KindLiteral {
			return nil, ErrModelingLimitation
		}
		step = stepNode.Const
	}

	itF := unitFunc(ex.iv, idx)
	lowerLeaf := affine.Leaf(affine.Constraint{F: subFunc(lower, itF), Rel: affine.LE}) // lower - it <= 0
	var upperLeaf *affine.Combiner
	switch cond.Symbol {
	case "<":
		upperLeaf = affine.Leaf(affine.Constraint{F: addConst(subFunc(itF, upper), 1), Rel: affine.LE}) // it-upper+1<=0
	case "<=":
		upperLeaf = affine.Leaf(affine.Constraint{F: subFunc(itF, upper), Rel: affine.LE}) // it-upper<=0
	default:
		return nil, ErrModelingLimitation
	}

	parts := []*affine.Combiner{}
	if domainPrefix != nil {
		parts = append(parts, domainPrefix)
	}
	parts = append(parts, lowerLeaf, upperLeaf)
	if step != 1 {
		parts = append(parts, affine.Div(affine.DivConstraint{F: subFunc(itF, lower), Mod: step}))
	}
	newDomain := affine.And(parts...)

	bodyStmts := statementSeq(ex.m, n.Operands[1])
	schedWithIter := append(append([]scheduleTerm{}, schedPrefix...), scheduleTerm{isIter: true, iterIdx: idx})
	return ex.walkSeq(bodyStmts, newDomain, schedWithIter)
}

// extractAccesses scans stmtAddr's whole subtree for embedded KindArrayElem
// nodes and converts each one's subscripts into an affine access System. A
// node whose Symbol is "write" is a Def; everything else is a Use.
func extractAccesses(m *ir.Manager, iv *affine.IterVector, stmtAddr ir.Addr) ([]AccessInfo, error) {
	var accesses []AccessInfo
	var werr error
	ir.Walk(m, stmtAddr, ir.Visitor{Default: func(_ *ir.Manager, n *ir.Node) {
		if werr != nil || n.Kind != ir.KindArrayElem {
			return
		}
		sys := affine.NewSystem(iv)
		for _, sub := range n.Operands[1:] {
			f, err := affine.FromIR(m, iv, sub)
			if err != nil {
				werr = ErrModelingLimitation
				return
			}
			if err := sys.Append(f); err != nil {
				werr = ErrModelingLimitation
				return
			}
		}
		kind := AccessUse
		if n.Symbol == "write" {
			kind = AccessDef
		}
		accesses = append(accesses, AccessInfo{Addr: n.Addr, Kind: kind, Access: sys})
	}})
	if werr != nil {
		return nil, werr
	}
	return accesses, nil
}

func buildScheduleFunc(iv *affine.IterVector, terms []scheduleTerm) *affine.System {
	sys := affine.NewSystem(iv)
	for _, t := range terms {
		var f *affine.Func
		if t.isIter {
			f = unitFunc(iv, t.iterIdx)
		} else {
			f = constFunc(iv, t.constant)
		}
		sys.Append(f)
	}
	return sys
}

func zeroFunc(iv *affine.IterVector) *affine.Func { return constFunc(iv, 0) }

func constFunc(iv *affine.IterVector, c int64) *affine.Func {
	f, _ := affine.NewFunc(iv, make([]int64, iv.NumIterators()), make([]int64, iv.NumParameters()), c)
	return f
}

func unitFunc(iv *affine.IterVector, idx int) *affine.Func {
	ic := make([]int64, iv.NumIterators())
	ic[idx] = 1
	f, _ := affine.NewFunc(iv, ic, make([]int64, iv.NumParameters()), 0)
	return f
}

func subFunc(a, b *affine.Func) *affine.Func {
	iv := a.Vector()
	ic := make([]int64, iv.NumIterators())
	pc := make([]int64, iv.NumParameters())
	for i := range ic {
		ic[i] = a.IterCoef(i) - b.IterCoef(i)
	}
	for i := range pc {
		pc[i] = a.ParamCoef(i) - b.ParamCoef(i)
	}
	f, _ := affine.NewFunc(iv, ic, pc, a.Constant()-b.Constant())
	return f
}

func addConst(f *affine.Func, delta int64) *affine.Func {
	iv := f.Vector()
	ic := make([]int64, iv.NumIterators())
	pc := make([]int64, iv.NumParameters())
	for i := range ic {
		ic[i] = f.IterCoef(i)
	}
	for i := range pc {
		pc[i] = f.ParamCoef(i)
	}
	g, _ := affine.NewFunc(iv, ic, pc, f.Constant()+delta)
	return g
}

// GetVariableDomain returns the owning statement of exprAddr and its
// iteration domain. This implementation returns the owning Stmt's full
// domain; the iterators exprAddr itself does not reference are not
// eliminated, and islfacade.NewSetFromDomain does not project them out
// either.
func GetVariableDomain(m *ir.Manager, s *Scop, exprAddr ir.Addr) (*Stmt, *affine.Domain, error) {
	for _, st := range s.Stmts() {
		if containsAddr(m, st.Addr, exprAddr) {
			return st, st.Domain, nil
		}
	}
	return nil, nil, ErrModelingLimitation
}

func containsAddr(m *ir.Manager, root, target ir.Addr) bool {
	if root == target {
		return true
	}
	found := false
	ir.Walk(m, root, ir.Visitor{Default: func(_ *ir.Manager, n *ir.Node) {
		if n.Addr == target {
			found = true
		}
	}})
	return found
}
