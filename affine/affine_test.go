package affine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/affine"
	"github.com/parastat/parastat/ir"
)

func TestIterVector_MergePreservesOrder(t *testing.T) {
	v := affine.NewIterVector()
	v.AddIterator("i")
	v.AddParameter("N")

	w := affine.NewIterVector()
	w.AddIterator("i")
	w.AddIterator("j")
	w.AddParameter("N")
	w.AddParameter("M")

	merged := affine.Merge(v, w)
	assert.Equal(t, 2, merged.NumIterators())
	assert.Equal(t, 2, merged.NumParameters())
	assert.Equal(t, 0, merged.IteratorIndex("i"))
	assert.Equal(t, 1, merged.IteratorIndex("j"))
}

func TestFunc_EvalAndRebase(t *testing.T) {
	v := affine.NewIterVector()
	v.AddIterator("i")
	f, err := affine.NewFunc(v, []int64{2}, nil, 3)
	require.NoError(t, err)

	got, err := f.Eval([]int64{5}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 13, got) // 2*5+3

	w := affine.NewIterVector()
	w.AddIterator("j")
	w.AddIterator("i")
	rebased := affine.ToBase(f, w)

	got2, err := rebased.Eval([]int64{100, 5}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 13, got2) // i's coefficient followed i to its new slot
}

func TestFunc_RebaseOntoNarrowerVectorFails(t *testing.T) {
	v := affine.NewIterVector()
	v.AddIterator("i")
	v.AddIterator("j")
	f, err := affine.NewFunc(v, []int64{1, 1}, nil, 0) // i + j
	require.NoError(t, err)

	narrow := affine.NewIterVector()
	narrow.AddIterator("i")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		herr := affine.RecoverRebaseFailure(r)
		require.ErrorIs(t, herr, affine.ErrVariableNotFound)
	}()
	affine.ToBase(f, narrow)
	t.Fatal("expected ToBase to panic")
}

func TestNormalize_ExpandsNotEqual(t *testing.T) {
	v := affine.NewIterVector()
	v.AddIterator("i")
	f, _ := affine.NewFunc(v, []int64{1}, nil, 0)
	c := affine.Leaf(affine.Constraint{F: f, Rel: affine.NE})

	norm := affine.Normalize(c)
	// i != 0 normalizes to a disjunction of two <= leaves.
	assert.NotNil(t, norm)
}

func TestDomain_IntersectShortCircuitsOnEmpty(t *testing.T) {
	v := affine.NewIterVector()
	empty := affine.Empty(v)
	universe := affine.Universe(v)

	got := affine.Intersect(empty, universe)
	assert.True(t, got.IsEmpty())

	got2 := affine.Intersect(universe, universe)
	assert.True(t, got2.IsUniverse())
}

func TestSystem_ZeroPad(t *testing.T) {
	v := affine.NewIterVector()
	v.AddIterator("i")
	s := affine.NewSystem(v)
	f, _ := affine.NewFunc(v, []int64{1}, nil, 0)
	require.NoError(t, s.Append(f))

	padded := s.ZeroPad(2)
	assert.Equal(t, 3, padded.Dim())
}

func TestFromIR_LinearForm(t *testing.T) {
	m := ir.NewManager()
	v := affine.NewIterVector()
	v.AddIterator("i")

	two := m.New(ir.KindLiteral, "")
	m.Node(two).Const = 2
	iVar := m.New(ir.KindVariable, "i")
	mul := m.New(ir.KindBinOp, "*", two, iVar)
	five := m.New(ir.KindLiteral, "")
	m.Node(five).Const = 5
	sum := m.New(ir.KindBinOp, "+", mul, five)

	f, err := affine.FromIR(m, v, sum)
	require.NoError(t, err)

	got, err := f.Eval([]int64{10}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 25, got) // 2*10+5
}

func TestFromIR_NonAffineCallFails(t *testing.T) {
	m := ir.NewManager()
	v := affine.NewIterVector()
	callee := m.New(ir.KindVariable, "f")
	call := m.New(ir.KindCall, "f", callee)

	_, err := affine.FromIR(m, v, call)
	require.ErrorIs(t, err, affine.ErrNotAffine)
}

func TestFromIR_AutoAddsNewParameter(t *testing.T) {
	m := ir.NewManager()
	v := affine.NewIterVector()
	nVar := m.New(ir.KindVariable, "N")

	f, err := affine.FromIR(m, v, nVar)
	require.NoError(t, err)
	assert.Equal(t, 1, v.NumParameters())
	got, err := f.Eval(nil, []int64{7})
	require.NoError(t, err)
	assert.EqualValues(t, 7, got)
}
