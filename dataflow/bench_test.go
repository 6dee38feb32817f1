package dataflow_test

import (
	"fmt"
	"testing"

	"github.com/willf/bitset"

	"github.com/parastat/parastat/cfg"
	"github.com/parastat/parastat/dataflow"
	"github.com/parastat/parastat/ir"
	"github.com/parastat/parastat/lattice"
)

// buildStraightLineGraph builds a CFG for n sequential statements, one block
// per statement.
func buildStraightLineGraph(n int) (*cfg.Graph, cfg.SubGraph) {
	m := ir.NewManager()
	stmts := make([]ir.Addr, n)
	for i := range stmts {
		stmts[i] = simpleStmt(m, fmt.Sprintf("s%d", i))
	}
	root := m.New(ir.KindCompound, "", stmts...)
	g := cfg.NewGraph()
	sg, err := cfg.Build(g, m, root, cfg.WithGranularity(cfg.OneStatementPerBlock))
	if err != nil {
		panic(err)
	}
	return g, *sg
}

// BenchmarkSolve_StraightLine measures the worklist solver's cost over
// straight-line programs of increasing block count.
func BenchmarkSolve_StraightLine(b *testing.B) {
	b.ReportAllocs()
	for _, n := range []int{10, 100, 1000} {
		n := n
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			g, sg := buildStraightLineGraph(n)
			l := lattice.NewBitsetPowerset(1)
			identity := func(_ string, in *bitset.BitSet) *bitset.BitSet { return in.Clone() }
			problem := dataflow.Problem[*bitset.BitSet]{
				Graph:     g,
				Sub:       sg,
				Lattice:   l,
				Transfer:  identity,
				Boundary:  bitset.New(1),
				Direction: dataflow.Forward,
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = dataflow.Solve(problem)
			}
		})
	}
}
