package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parastat/parastat/constraint"
)

func TestSolve_ElemAndSubsetPropagate(t *testing.T) {
	p := constraint.NewPool()
	x := p.Fresh("X")
	y := p.Fresh("Y")

	cs := []constraint.Constraint[string]{
		&constraint.Elem[string]{V: "a", X: x},
		&constraint.Subset[string]{X: x, Y: y},
	}
	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.True(t, a.Contains(y, "a"))
}

func TestSolve_SubsetIfGatesOnGuard(t *testing.T) {
	p := constraint.NewPool()
	x := p.Fresh("X")
	y := p.Fresh("Y")
	z := p.Fresh("Z")

	cs := []constraint.Constraint[string]{
		&constraint.Elem[string]{V: "p", X: y},
		&constraint.SubsetIf[string]{V: "v", X: x, Y: y, Z: z},
	}
	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.False(t, a.Contains(z, "p"), "guard never satisfied: Z must stay empty")

	cs2 := []constraint.Constraint[string]{
		&constraint.Elem[string]{V: "v", X: x},
		&constraint.Elem[string]{V: "p", X: y},
		&constraint.SubsetIf[string]{V: "v", X: x, Y: y, Z: z},
	}
	a2, err := constraint.Solve(cs2, nil)
	require.NoError(t, err)
	assert.True(t, a2.Contains(z, "p"))
}

func TestSolve_SubsetUnaryAppliesMonotoneFunc(t *testing.T) {
	p := constraint.NewPool()
	x := p.Fresh("X")
	y := p.Fresh("Y")

	double := func(v int) (int, bool) { return v * 2, true }
	cs := []constraint.Constraint[int]{
		&constraint.Elem[int]{V: 3, X: x},
		&constraint.SubsetUnary[int]{X: x, Y: y, F: double},
	}
	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.True(t, a.Contains(y, 6))
}

func TestSolveLazy_ResolvesOnlyDemandedChain(t *testing.T) {
	p := constraint.NewPool()
	x := p.Fresh("X")
	y := p.Fresh("Y")
	z := p.Fresh("Z") // never demanded

	resolved := map[constraint.ValueID]bool{}
	resolver := func(ids []constraint.ValueID) []constraint.Constraint[string] {
		var out []constraint.Constraint[string]
		for _, id := range ids {
			resolved[id] = true
			switch id {
			case x:
				out = append(out, &constraint.Elem[string]{V: "a", X: x})
			case y:
				out = append(out, &constraint.Subset[string]{X: x, Y: y})
			case z:
				out = append(out, &constraint.Elem[string]{V: "unreachable", X: z})
			}
		}
		return out
	}

	a, err := constraint.SolveLazy(resolver, nil, []constraint.ValueID{y})
	require.NoError(t, err)
	assert.True(t, a.Contains(y, "a"))
	assert.False(t, resolved[z], "z was never demanded and must not be resolved")
}

func TestDynamicUnion_GrowsAsDriverGrows(t *testing.T) {
	p := constraint.NewPool()
	driver := p.Fresh("driver")
	out := p.Fresh("out")
	r1 := p.Fresh("r1")
	r2 := p.Fresh("r2")

	derive := func(e string) []constraint.ValueID {
		if e == "callee1" {
			return []constraint.ValueID{r1}
		}
		return []constraint.ValueID{r2}
	}

	cs := []constraint.Constraint[string]{
		&constraint.Elem[string]{V: "callee1", X: driver},
		&constraint.Elem[string]{V: "retval1", X: r1},
		&constraint.Elem[string]{V: "retval2", X: r2},
		constraint.NewDynamicUnion(driver, derive, out),
	}
	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.True(t, a.Contains(out, "retval1"))
	assert.False(t, a.Contains(out, "retval2"))
}

func TestIfBigger_GatesOnThreshold(t *testing.T) {
	p := constraint.NewPool()
	x := p.Fresh("X")
	y := p.Fresh("Y")
	z := p.Fresh("Z")

	cs := []constraint.Constraint[string]{
		&constraint.Elem[string]{V: "only-one", X: x},
		&constraint.Elem[string]{V: "payload", X: y},
		&constraint.IfBigger[string]{X: x, Threshold: 2, Y: y, Z: z},
	}
	a, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.False(t, a.Contains(z, "payload"))

	cs = append(cs, &constraint.Elem[string]{V: "a-second-one", X: x})
	a2, err := constraint.Solve(cs, nil)
	require.NoError(t, err)
	assert.True(t, a2.Contains(z, "payload"))
}
