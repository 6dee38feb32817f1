package dvalue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/dvalue"
)

// intOps is a toy base lattice over flat ints: meet = min, join = max,
// enough to exercise hash-consing and pointwise meet.
func intOps() dvalue.BaseOps[int] {
	return dvalue.BaseOps[int]{
		Hash:  func(v int) uint64 { return uint64(v) },
		Meet:  func(a *int, b int) bool { if b < *a { *a = b; return true }; return false },
		Join:  func(a *int, b int) bool { if b > *a { *a = b; return true }; return false },
		Equal: func(a, b int) bool { return a == b },
	}
}

func TestManager_HashConsing(t *testing.T) {
	m := dvalue.NewManager(dvalue.FirstOrder, intOps())
	a1 := m.Atomic(5)
	a2 := m.Atomic(5)
	assert.Same(t, a1, a2, "structurally equal atomic values must share identity")

	field := dvalue.Index{Kind: dvalue.IndexField, Name: "x"}
	c1 := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{field: a1})
	c2 := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{field: a2})
	assert.Same(t, c1, c2)
}

func TestManager_ProjectionAndMutation(t *testing.T) {
	m := dvalue.NewManager(dvalue.FirstOrder, intOps())
	empty := m.CreateEmpty(dvalue.IndexField)

	fieldX := dvalue.Index{Kind: dvalue.IndexField, Name: "x"}
	v := m.Mutate(empty, dvalue.Path{fieldX}, m.Atomic(7))
	require.True(t, v.IsCompound())

	got := m.Project(v, fieldX)
	base, ok := got.Base()
	require.True(t, ok)
	assert.Equal(t, 7, base)

	// projecting a field never set yields the canonical empty compound.
	fieldY := dvalue.Index{Kind: dvalue.IndexField, Name: "y"}
	absent := m.Project(v, fieldY)
	assert.Same(t, empty, absent)
}

func TestManager_MutateRootReplaces(t *testing.T) {
	m := dvalue.NewManager(dvalue.FirstOrder, intOps())
	a := m.Atomic(1)
	b := m.Atomic(2)
	out := m.Mutate(a, dvalue.Root(), b)
	assert.Same(t, b, out)
}

func TestManager_MeetPointwiseOverUnion(t *testing.T) {
	m := dvalue.NewManager(dvalue.FirstOrder, intOps())
	fx := dvalue.Index{Kind: dvalue.IndexField, Name: "x"}
	fy := dvalue.Index{Kind: dvalue.IndexField, Name: "y"}

	left := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{fx: m.Atomic(3)})
	right := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{fx: m.Atomic(9), fy: m.Atomic(4)})

	met := m.Meet(left, right)
	gotX, _ := m.Project(met, fx).Base()
	assert.Equal(t, 3, gotX) // min(3,9)

	// fy was missing on `left`, so it's treated as bottom and the slot drops.
	assert.Same(t, m.CreateEmpty(dvalue.IndexField), m.Project(met, fy))
}

func TestSecondOrder_ProjectionJoinsAcrossElements(t *testing.T) {
	m := dvalue.NewManager(dvalue.SecondOrder, intOps())
	fx := dvalue.Index{Kind: dvalue.IndexField, Name: "x"}

	t1 := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{fx: m.Atomic(1)})
	t2 := m.Compound(dvalue.IndexField, map[dvalue.Index]*dvalue.Data[int]{fx: m.Atomic(5)})
	set := m.NewSet(map[*dvalue.Data[int]]struct{}{t1: {}, t2: {}})

	joined := m.Project(set, fx)
	base, ok := joined.Base()
	require.True(t, ok)
	assert.Equal(t, 5, base) // join = max(1,5)
}

func TestSecondOrder_WideningCollapsesLargeSets(t *testing.T) {
	m := dvalue.NewManager(dvalue.SecondOrder, intOps(), dvalue.WithSetWidening(2))
	elems := map[*dvalue.Data[int]]struct{}{
		m.Atomic(1): {}, m.Atomic(2): {}, m.Atomic(3): {},
	}
	s := m.NewSet(elems)
	other := m.NewSet(map[*dvalue.Data[int]]struct{}{m.Atomic(2): {}, m.Atomic(3): {}})
	// meetSet's pairwise meets give {1,2,3}, over the threshold of 2, so
	// maybeWiden collapses the result to a singleton summary: join = max = 3.
	out := m.Meet(s, other)
	require.True(t, out.IsSet())
	assert.Same(t, m.NewSet(map[*dvalue.Data[int]]struct{}{m.Atomic(3): {}}), out)
}

func TestRef_AliasesOnPrefix(t *testing.T) {
	loc := dvalue.Location[int, dvalue.GlobalContext]{Site: 1}
	base := dvalue.Ref[int, dvalue.GlobalContext]{Loc: loc}
	fx := dvalue.Index{Kind: dvalue.IndexField, Name: "x"}
	narrowed := base.Narrow(dvalue.Path{fx})

	assert.True(t, base.Aliases(narrowed))
	assert.True(t, narrowed.Aliases(base))

	other := dvalue.Ref[int, dvalue.GlobalContext]{Loc: dvalue.Location[int, dvalue.GlobalContext]{Site: 2}}
	assert.False(t, base.Aliases(other))
}
