package cba

import (
	"github.com/parastat/parastat/constraint"
	"github.com/parastat/parastat/dvalue"
	"github.com/parastat/parastat/ir"
)

// DefUse resolves a use (an ir.KindVariable node) to the address that
// defines it, when one is known statically. Generator falls back to the
// two external sentinels for any use DefUse cannot resolve: value-at-use
// equals value-at-definition, with unbound uses treated as escaping to the
// unknown-external answer.
type DefUse func(use ir.Addr) (def ir.Addr, ok bool)

// genKey names one generator-internal ValueID: an IR address observed under
// a specific context.
type genKey[C comparable] struct {
	Addr ir.Addr
	Ctx  C
}

// Generator is the per-analysis constraint generator: a finite dispatch
// table, keyed by ir.Kind, that walks an IR subtree and emits the
// constraints needed to define each visited address's reference-value
// ValueID. One Generator instance is scoped to one analysis run, mirroring
// every other owning-manager type in this module (ir.Manager, dvalue.Manager,
// cfg.Graph).
type Generator[C comparable] struct {
	m      *ir.Manager
	pool   *constraint.Pool
	ctxOf  func(ir.Addr) C
	defUse DefUse

	ids map[genKey[C]]constraint.ValueID
	cs  []constraint.Constraint[Value[C]]
}

// NewGenerator returns a Generator over m. ctxOf supplies the context a
// given IR address is analyzed under; defUse resolves variable uses to
// their definition site,
// or nil to treat every use as escaping to the unknown-external answer.
func NewGenerator[C comparable](m *ir.Manager, ctxOf func(ir.Addr) C, defUse DefUse) *Generator[C] {
	return &Generator[C]{
		m:      m,
		pool:   constraint.NewPool(),
		ctxOf:  ctxOf,
		defUse: defUse,
		ids:    map[genKey[C]]constraint.ValueID{},
	}
}

// ValueIDFor returns the ValueID naming R(addr,ctx), allocating one from the
// Generator's own Pool on first use.
func (g *Generator[C]) ValueIDFor(addr ir.Addr, ctx C) constraint.ValueID {
	key := genKey[C]{Addr: addr, Ctx: ctx}
	if id, ok := g.ids[key]; ok {
		return id
	}
	id := g.pool.Fresh(addr.String())
	g.ids[key] = id
	return id
}

// Generate walks root post-order and appends the constraints prescribed for
// every reference-bearing construct beneath it, returning the full set of
// constraints emitted by this Generator so far
// (successive Generate calls accumulate into one constraint set, so a whole
// program can be fed in one statement at a time).
func (g *Generator[C]) Generate(root ir.Addr) []constraint.Constraint[Value[C]] {
	ir.Walk(g.m, root, ir.Visitor{
		Rules: map[ir.Kind]func(*ir.Manager, *ir.Node){
			ir.KindLiteral:     g.ruleLiteral,
			ir.KindAlloc:       g.ruleAlloc,
			ir.KindNarrow:      g.ruleNarrow,
			ir.KindExpand:      g.ruleExpand,
			ir.KindReinterpret: g.ruleReinterpret,
			ir.KindThreadSpawn: g.ruleThreadSpawn,
			ir.KindVariable:    g.ruleVariable,
			ir.KindBind:        g.ruleBind,
		},
		Default: g.ruleDefaultConservative,
	})
	return g.cs
}

// emit appends c to the generated set, a small helper kept for readability
// at each call site below.
func (g *Generator[C]) emit(c constraint.Constraint[Value[C]]) {
	g.cs = append(g.cs, c)
}

// ruleLiteral handles "literal of reference type (memory constructor)":
// location(literal,ctx) ∈ R(literal,ctx). Only literals tagged as reference
// constructors (Symbol == "ref") introduce a location; any other literal
// (an integer constant, a bare function-name tag consumed by the call-site
// manager) carries no reference value and is skipped.
func (g *Generator[C]) ruleLiteral(_ *ir.Manager, n *ir.Node) {
	if n.Symbol != "ref" {
		return
	}
	ctx := g.ctxOf(n.Addr)
	g.emit(&constraint.Elem[Value[C]]{V: RefValue(n.Addr, ctx, dvalue.Root()), X: g.ValueIDFor(n.Addr, ctx)})
}

// ruleAlloc handles "allocation call": location(call,ctx) ∈ R(call,ctx).
func (g *Generator[C]) ruleAlloc(_ *ir.Manager, n *ir.Node) {
	ctx := g.ctxOf(n.Addr)
	g.emit(&constraint.Elem[Value[C]]{V: RefValue(n.Addr, ctx, dvalue.Root()), X: g.ValueIDFor(n.Addr, ctx)})
}

// narrowStep recovers the single data-path step a narrow/expand node
// applies: a named field when the node carries one, otherwise a positional
// array/tuple step from its integer constant operand.
func narrowStep(n *ir.Node) dvalue.Index {
	if n.Symbol != "" {
		return dvalue.Index{Kind: dvalue.IndexField, Name: n.Symbol}
	}
	return dvalue.Index{Kind: dvalue.IndexArray, Pos: int(n.Const)}
}

// ruleNarrow handles narrow(ref,path):
// {(ℓ, p++q) : (ℓ,p) ∈ R(ref), q ∈ DP(path)} ⊑ R(call). External sentinels
// pass through unchanged (narrowing an unknown value is still unknown).
func (g *Generator[C]) ruleNarrow(_ *ir.Manager, n *ir.Node) {
	if len(n.Operands) == 0 {
		return
	}
	step := narrowStep(n)
	refAddr := n.Operands[0]
	x := g.ValueIDFor(refAddr, g.ctxOf(refAddr))
	y := g.ValueIDFor(n.Addr, g.ctxOf(n.Addr))
	g.emit(&constraint.SubsetUnary[Value[C]]{X: x, Y: y, F: func(v Value[C]) (Value[C], bool) {
		if v.IsRef() {
			return v.Narrow(step), true
		}
		return v, v.IsExternal()
	}})
}

// ruleExpand handles expand(ref,path), symmetric to ruleNarrow: prepend
// instead of append.
func (g *Generator[C]) ruleExpand(_ *ir.Manager, n *ir.Node) {
	if len(n.Operands) == 0 {
		return
	}
	step := narrowStep(n)
	refAddr := n.Operands[0]
	x := g.ValueIDFor(refAddr, g.ctxOf(refAddr))
	y := g.ValueIDFor(n.Addr, g.ctxOf(n.Addr))
	g.emit(&constraint.SubsetUnary[Value[C]]{X: x, Y: y, F: func(v Value[C]) (Value[C], bool) {
		if v.IsRef() {
			return v.Expand(step), true
		}
		return v, v.IsExternal()
	}})
}

// ruleReinterpret handles re-interpret(ref): R(ref) ⊑ R(call). Reinterpret
// carries no data-path transformation, so it propagates the identity.
func (g *Generator[C]) ruleReinterpret(_ *ir.Manager, n *ir.Node) {
	if len(n.Operands) == 0 {
		return
	}
	refAddr := n.Operands[0]
	x := g.ValueIDFor(refAddr, g.ctxOf(refAddr))
	y := g.ValueIDFor(n.Addr, g.ctxOf(n.Addr))
	g.emit(&constraint.Subset[Value[C]]{X: x, Y: y})
}

// ruleThreadSpawn introduces the thread-body value CBA tracks alongside
// references: spawning a thread yields, at the spawn expression, the
// thread-body address of its operand.
func (g *Generator[C]) ruleThreadSpawn(_ *ir.Manager, n *ir.Node) {
	if len(n.Operands) == 0 {
		return
	}
	ctx := g.ctxOf(n.Addr)
	g.emit(&constraint.Elem[Value[C]]{V: ThreadBodyValue[C](n.Operands[0]), X: g.ValueIDFor(n.Addr, ctx)})
}

// ruleBind handles a let-binding: the bound variable's definition value is
// whatever its right-hand side evaluates to (R(rhs) ⊑ R(bind)), the same
// value-at-use-equals-value-at-definition default applied at the
// definition rather than the use.
func (g *Generator[C]) ruleBind(_ *ir.Manager, n *ir.Node) {
	if len(n.Operands) == 0 {
		return
	}
	rhs := n.Operands[0]
	x := g.ValueIDFor(rhs, g.ctxOf(rhs))
	y := g.ValueIDFor(n.Addr, g.ctxOf(n.Addr))
	g.emit(&constraint.Subset[Value[C]]{X: x, Y: y})
}

// ruleVariable handles a use: R(def) ⊑ R(use) when DefUse resolves it,
// otherwise both unknown-external sentinels are injected directly, covering
// any situation where an external value can reach the analyzed program.
func (g *Generator[C]) ruleVariable(_ *ir.Manager, n *ir.Node) {
	ctx := g.ctxOf(n.Addr)
	y := g.ValueIDFor(n.Addr, ctx)
	if g.defUse != nil {
		if def, ok := g.defUse(n.Addr); ok {
			x := g.ValueIDFor(def, g.ctxOf(def))
			g.emit(&constraint.Subset[Value[C]]{X: x, Y: y})
			return
		}
	}
	g.emit(&constraint.Elem[Value[C]]{V: External1[C](), X: y})
	g.emit(&constraint.Elem[Value[C]]{V: External2[C](), X: y})
}

// ruleDefaultConservative is the fallback for every ir.Kind with no
// registered rule (arithmetic, control constructs, ...): an unrecognized
// kind must yield a conservative result rather than being silently skipped,
// so it injects the unknown-external sentinels at that
// node's ValueID whenever the node has reference type potential (any node
// reached by Generate is assumed to, since Generate is only ever pointed at
// reference-producing subtrees by a caller).
func (g *Generator[C]) ruleDefaultConservative(_ *ir.Manager, n *ir.Node) {
	ctx := g.ctxOf(n.Addr)
	y := g.ValueIDFor(n.Addr, ctx)
	g.emit(&constraint.Elem[Value[C]]{V: External1[C](), X: y})
	g.emit(&constraint.Elem[Value[C]]{V: External2[C](), X: y})
}
