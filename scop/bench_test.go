package scop_test

import (
	"fmt"
	"testing"

	"github.com/parastat/parastat/ir"
	"github.com/parastat/parastat/islfacade"
	"github.com/parastat/parastat/scop"
)

// buildDeepNest builds depth nested affine loops `for i0 ... for i_{depth-1}
// { A[i0]...[i_{depth-1}] = ...; }`, used to scale Extract's recursive-descent
// cost with nesting depth.
func buildDeepNest(m *ir.Manager, depth int) ir.Addr {
	arrBase := m.New(ir.KindVariable, "A")
	iters := make([]ir.Addr, depth)
	for i := 0; i < depth; i++ {
		iters[i] = m.New(ir.KindVariable, fmt.Sprintf("i%d", i))
	}
	write := arrayElem(m, "write", arrBase, iters...)
	body := write
	for i := depth - 1; i >= 0; i-- {
		body = buildAffineLoop(m, fmt.Sprintf("i%d", i), 8, body)
	}
	return body
}

// BenchmarkExtract_NestingDepth measures extraction cost as loop nesting
// depth grows.
func BenchmarkExtract_NestingDepth(b *testing.B) {
	b.ReportAllocs()
	for _, depth := range []int{1, 4, 8} {
		depth := depth
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m := ir.NewManager()
				loop := buildDeepNest(m, depth)
				if _, err := scop.Extract(m, loop); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkComputeDeps_ShiftedAccess measures dependence computation over
// the canonical write-then-shifted-read loop.
func BenchmarkComputeDeps_ShiftedAccess(b *testing.B) {
	b.ReportAllocs()
	m := ir.NewManager()
	loop, _, _ := rawLoop(m)
	s, err := scop.Extract(m, loop)
	if err != nil {
		b.Fatal(err)
	}
	ctx := islfacade.NewContext()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scop.ComputeDeps(ctx, s, []scop.DepKind{scop.RAW})
	}
}
