package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/ir"
)

func TestManager_NewAndResolve(t *testing.T) {
	m := ir.NewManager()
	lit := m.New(ir.KindLiteral, "x")
	require.False(t, lit.IsZero())

	n := m.Node(lit)
	require.NotNil(t, n)
	assert.Equal(t, ir.KindLiteral, n.Kind)
}

func TestAddr_WithPath(t *testing.T) {
	a := ir.Addr{}
	b := a.WithPath(1, 2)
	assert.Equal(t, []int{1, 2}, b.Path())
	c := b.WithPath(3)
	assert.Equal(t, []int{1, 2, 3}, c.Path())
}

func TestVisitor_DispatchFallsBackToDefault(t *testing.T) {
	m := ir.NewManager()
	callee := m.New(ir.KindVariable, "f")
	call := m.New(ir.KindCall, "f", callee)

	var seenKinds []ir.Kind
	v := ir.Visitor{
		Rules: map[ir.Kind]func(*ir.Manager, *ir.Node){
			ir.KindVariable: func(m *ir.Manager, n *ir.Node) { seenKinds = append(seenKinds, n.Kind) },
		},
		Default: func(m *ir.Manager, n *ir.Node) { seenKinds = append(seenKinds, n.Kind) },
	}
	ir.Walk(m, call, v)
	assert.Equal(t, []ir.Kind{ir.KindVariable, ir.KindCall}, seenKinds)
}

func TestNode_AnnotateAndRead(t *testing.T) {
	m := ir.NewManager()
	a := m.New(ir.KindLiteral, "x")
	n := m.Node(a)
	n.Annotate("refs", 42)

	v, ok := n.Annotation("refs")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = n.Annotation("missing")
	assert.False(t, ok)
}

func TestCheck_FlagsMissingCallee(t *testing.T) {
	m := ir.NewManager()
	bogus := ir.Addr{} // never materialized -> Node(bogus) is nil, Walk stops
	_ = bogus

	call := m.New(ir.KindCall, "f") // no callee operand
	res := ir.Check(m, call)
	require.True(t, res.HasErrors())
	assert.Equal(t, "call-missing-callee", res.Messages[0].Kind)
}

func TestCheck_UnknownKindIsWarningNotSilent(t *testing.T) {
	m := ir.NewManager()
	n := m.New(ir.KindUnknown, "")
	res := ir.Check(m, n)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, ir.SeverityWarning, res.Messages[0].Severity)
	assert.False(t, res.HasErrors())
}
