package lattice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/lattice"
)

// intLattice builds a toy lattice over {bottom=-1 < 0 < 1 < 2 < ... < top=maxint}
// via plain min/max, enough to exercise the lattice laws.
func intLattice() *lattice.Lattice[int] {
	const top = 1 << 30
	const bottom = -1
	meet := func(a *int, b int) bool {
		if b < *a {
			*a = b
			return true
		}
		return false
	}
	join := func(a *int, b int) bool {
		if b > *a {
			*a = b
			return true
		}
		return false
	}
	eq := func(a, b int) bool { return a == b }
	return lattice.New(top, bottom, meet, join, eq)
}

func TestLattice_TopBottomShortCircuit(t *testing.T) {
	l := intLattice()

	a := l.Top
	changed := l.MeetAssign(&a, 5)
	assert.True(t, changed)
	assert.Equal(t, 5, a)

	b := l.Bottom
	changed = l.MeetAssign(&b, 5)
	assert.False(t, changed)
	assert.Equal(t, l.Bottom, b)
}

func TestLattice_Idempotence(t *testing.T) {
	l := intLattice()
	a := 7
	changed := l.MeetAssign(&a, 7)
	assert.False(t, changed)
	assert.Equal(t, 7, a)
}

func TestLattice_Associativity(t *testing.T) {
	l := intLattice()
	// (a ⊓ b) ⊓ c == a ⊓ (b ⊓ c)
	a, b, c := 3, 5, 1

	ab := a
	l.MeetAssign(&ab, b)
	l.MeetAssign(&ab, c)

	bc := b
	l.MeetAssign(&bc, c)
	a2 := a
	l.MeetAssign(&a2, bc)

	assert.Equal(t, ab, a2)
}

func TestLattice_LessOrEqual(t *testing.T) {
	l := intLattice()
	assert.True(t, l.LessOrEqual(3, 5))
	assert.False(t, l.LessOrEqual(5, 3))
	assert.True(t, l.LessOrEqual(l.Bottom, 5))
	assert.True(t, l.LessOrEqual(5, l.Top))
}

func TestLattice_LowerSemiPanicsOnJoin(t *testing.T) {
	l := lattice.NewLowerSemi(1<<30, -1, func(a *int, b int) bool {
		if b < *a {
			*a = b
			return true
		}
		return false
	}, func(a, b int) bool { return a == b })

	require.Panics(t, func() {
		x := 1
		l.JoinAssign(&x, 2)
	})
}

func TestFlat_Laws(t *testing.T) {
	fl := lattice.NewFlat[string]()
	v1 := lattice.FlatValue("a")
	v2 := lattice.FlatValue("b")

	x := v1
	changed := fl.MeetAssign(&x, v2)
	assert.True(t, changed)
	got, has := x.Get()
	assert.False(t, has)
	assert.Equal(t, "", got)

	y := v1
	changed = fl.MeetAssign(&y, v1)
	assert.False(t, changed)
	got, has = y.Get()
	require.True(t, has)
	assert.Equal(t, "a", got)
}

func TestBitsetPowerset_MeetJoin(t *testing.T) {
	bl := lattice.NewBitsetPowerset(4)
	a := bl.Bottom.Clone()
	a.Set(0)
	a.Set(1)
	b := bl.Bottom.Clone()
	b.Set(1)
	b.Set(2)

	joined := a.Clone()
	changed := bl.JoinAssign(&joined, b)
	assert.True(t, changed)
	assert.True(t, joined.Test(0) && joined.Test(1) && joined.Test(2))

	met := a.Clone()
	changed = bl.MeetAssign(&met, b)
	assert.True(t, changed)
	assert.True(t, met.Test(1))
	assert.False(t, met.Test(0))
}
