package cba_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/cba"
	"github.com/parastat/parastat/constraint"
	"github.com/parastat/parastat/dvalue"
	"github.com/parastat/parastat/ir"
)

// TestGenerator_ReferenceFlowThroughNarrow declares x of reference type,
// binds y = narrow(x, p). The reference analysis must yield, for y, exactly
// {(loc(x), p)}.
func TestGenerator_ReferenceFlowThroughNarrow(t *testing.T) {
	m := ir.NewManager()

	allocX := m.New(ir.KindAlloc, "")
	bindX := m.New(ir.KindBind, "x", allocX)
	useX := m.New(ir.KindVariable, "x")
	narrowed := m.New(ir.KindNarrow, "p", useX)
	bindY := m.New(ir.KindBind, "y", narrowed)
	program := m.New(ir.KindCompound, "", bindX, bindY)

	defUse := func(use ir.Addr) (ir.Addr, bool) {
		if use == useX {
			return bindX, true
		}
		return ir.Addr{}, false
	}
	ctxOf := func(ir.Addr) cba.Insensitive { return cba.Insensitive{} }

	g := cba.NewGenerator[cba.Insensitive](m, ctxOf, defUse)
	cs := g.Generate(program)
	require.NotEmpty(t, cs)

	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)

	yID := g.ValueIDFor(bindY, cba.Insensitive{})
	got := a.Get(yID)
	require.Len(t, got, 1)

	want := cba.RefValue[cba.Insensitive](allocX, cba.Insensitive{}, dvalue.Root().Append(dvalue.Index{Kind: dvalue.IndexField, Name: "p"}))
	_, ok := got[want]
	assert.True(t, ok, "expected R(y) == {(loc(x), p)}, got %v", got)
}

// An unresolved use (no DefUse entry) must inject both unknown-external
// sentinels rather than silently producing the empty set.
func TestGenerator_UnresolvedUseInjectsExternals(t *testing.T) {
	m := ir.NewManager()
	use := m.New(ir.KindVariable, "unbound")

	ctxOf := func(ir.Addr) cba.Insensitive { return cba.Insensitive{} }
	g := cba.NewGenerator[cba.Insensitive](m, ctxOf, nil)
	cs := g.Generate(use)

	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)

	got := a.Get(g.ValueIDFor(use, cba.Insensitive{}))
	assert.Len(t, got, 2)
	_, hasE1 := got[cba.External1[cba.Insensitive]()]
	_, hasE2 := got[cba.External2[cba.Insensitive]()]
	assert.True(t, hasE1 && hasE2)
}

// TestManager_RecursiveCallSite builds let f = λx. f(x); f(3). The manager
// must return, for callee f, both the external call site and the recursive
// call inside f's body as callers.
func TestManager_RecursiveCallSite(t *testing.T) {
	m := ir.NewManager()

	// f's body: a call to (variable f) with one argument.
	argInBody := m.New(ir.KindLiteral, "")
	useFInBody := m.New(ir.KindVariable, "f")
	innerCall := m.New(ir.KindCall, "", useFInBody, argInBody)

	fLiteral := m.New(ir.KindLiteral, "f") // the function literal f is bound to
	bindF := m.New(ir.KindBind, "f", fLiteral)

	arg3 := m.New(ir.KindLiteral, "")
	useFTop := m.New(ir.KindVariable, "f")
	topCall := m.New(ir.KindCall, "", useFTop, arg3)

	program := m.New(ir.KindCompound, "", bindF, innerCall, topCall)

	mgr := cba.NewManager(m)
	mgr.Register(cba.Callable{Name: "f", Addr: fLiteral, Entry: innerCall})
	mgr.Scan(program)
	mgr.Resolve()

	callers := mgr.Callers(innerCall)
	assert.Len(t, callers, 2)
	assert.Contains(t, callers, innerCall)
	assert.Contains(t, callers, topCall)
}

// An open call (callee is neither a literal nor a variable the manager can
// bind) resolves to every registered callable plus the external sentinel.
func TestManager_OpenCallResolvesConservatively(t *testing.T) {
	m := ir.NewManager()

	fLiteral := m.New(ir.KindLiteral, "f")
	gLiteral := m.New(ir.KindLiteral, "g")

	// an "opaque" callee expression: neither a literal nor a variable.
	opaqueCallee := m.New(ir.KindBinOp, "+", fLiteral, gLiteral)
	openCall := m.New(ir.KindCall, "", opaqueCallee)

	mgr := cba.NewManager(m)
	mgr.Register(cba.Callable{Name: "f", Addr: fLiteral, Entry: fLiteral})
	mgr.Register(cba.Callable{Name: "g", Addr: gLiteral, Entry: gLiteral})
	mgr.Scan(openCall)
	mgr.Resolve()

	callees := mgr.Callees(openCall)
	assert.Len(t, callees, 3) // f, g, ExternalCallee
	assert.Contains(t, callees, fLiteral)
	assert.Contains(t, callees, gLiteral)
	assert.Contains(t, callees, cba.ExternalCallee.Entry)
}

func TestValue_AliasesViaExternalSentinel(t *testing.T) {
	ext := cba.External1[cba.Insensitive]()
	ref := cba.RefValue[cba.Insensitive](ir.Addr{}, cba.Insensitive{}, dvalue.Root())
	assert.True(t, ext.Aliases(ref))
	assert.True(t, ref.Aliases(ext))
}

func TestCallString_PushTruncatesToDepth(t *testing.T) {
	m := ir.NewManager()
	s1 := m.New(ir.KindCall, "")
	s2 := m.New(ir.KindCall, "")
	s3 := m.New(ir.KindCall, "")

	c := cba.GlobalCallString()
	c = c.Push(s1, 2)
	c = c.Push(s2, 2)
	assert.Equal(t, 2, c.Depth())
	c = c.Push(s3, 2)
	assert.Equal(t, 2, c.Depth())
}
