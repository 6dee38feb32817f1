package constraint_test

import (
	"fmt"
	"testing"

	"github.com/parastat/parastat/constraint"
)

// buildChain constructs a chain of n Subset constraints X0 subset X1 subset
// ... subset Xn, seeded with a single element at X0, exercising the
// worklist's propagation depth.
func buildChain(n int) ([]constraint.Constraint[int], constraint.ValueID, constraint.ValueID) {
	pool := constraint.NewPool()
	ids := make([]constraint.ValueID, n+1)
	for i := range ids {
		ids[i] = pool.Fresh(fmt.Sprintf("X%d", i))
	}
	cs := []constraint.Constraint[int]{&constraint.Elem[int]{V: 1, X: ids[0]}}
	for i := 0; i < n; i++ {
		cs = append(cs, &constraint.Subset[int]{X: ids[i], Y: ids[i+1]})
	}
	return cs, ids[0], ids[n]
}

// BenchmarkSolve_Chain measures the eager solver's worklist drain over
// subset chains of increasing length.
func BenchmarkSolve_Chain(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{10, 100, 1000} {
		n := n
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			cs, _, _ := buildChain(n)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = constraint.Solve(cs, nil)
			}
		})
	}
}
