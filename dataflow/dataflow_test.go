package dataflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/willf/bitset"

	"github.com/parastat/parastat/cfg"
	"github.com/parastat/parastat/dataflow"
	"github.com/parastat/parastat/ir"
	"github.com/parastat/parastat/lattice"
)

func simpleStmt(m *ir.Manager, name string) ir.Addr {
	return m.New(ir.KindBind, name)
}

// TestSolve_ReachingDefinitionsOnStraightLine exercises a forward monotone
// problem over a three-block straight-line program: the reaching-definition
// bit for a block's statement must be set in every Out set from that block
// onward.
func TestSolve_ReachingDefinitionsOnStraightLine(t *testing.T) {
	m := ir.NewManager()
	s1, s2, s3 := simpleStmt(m, "a"), simpleStmt(m, "b"), simpleStmt(m, "c")
	root := m.New(ir.KindCompound, "", s1, s2, s3)

	g := cfg.NewGraph()
	sg, err := cfg.Build(g, m, root, cfg.WithGranularity(cfg.OneStatementPerBlock))
	require.NoError(t, err)

	l := lattice.NewBitsetPowerset(3)

	// bit i ("definition i reaches here") is set by the block whose single
	// statement matches index i, and passes through unchanged otherwise.
	defOfBlock := map[string]int{}
	cur := sg.Entry
	idx := 0
	for {
		succ := g.Successors(cur)
		if len(succ) == 0 {
			break
		}
		next := succ[0].To
		if g.Block(next).Kind == cfg.KindExit {
			break
		}
		defOfBlock[next] = idx
		idx++
		cur = next
	}

	transfer := func(blockID string, in *bitset.BitSet) *bitset.BitSet {
		out := in.Clone()
		if i, ok := defOfBlock[blockID]; ok {
			out.Set(uint(i))
		}
		return out
	}

	res, err := dataflow.Solve(dataflow.Problem[*bitset.BitSet]{
		Graph:     g,
		Sub:       *sg,
		Lattice:   l,
		Transfer:  transfer,
		Boundary:  bitset.New(3),
		Direction: dataflow.Forward,
	})
	require.NoError(t, err)

	lastBlock := ""
	for id, i := range defOfBlock {
		if i == 2 {
			lastBlock = id
		}
	}
	require.NotEmpty(t, lastBlock)
	out := res.Out[lastBlock]
	assert.True(t, out.Test(0))
	assert.True(t, out.Test(1))
	assert.True(t, out.Test(2))
}

// TestSolve_BackwardSeedsExitAndPropagatesToPredecessors exercises the
// backward direction on the same shape: the boundary value planted at Exit
// must reach every block's In set once the worklist drains.
func TestSolve_BackwardSeedsExitAndPropagatesToPredecessors(t *testing.T) {
	m := ir.NewManager()
	s1, s2 := simpleStmt(m, "a"), simpleStmt(m, "b")
	root := m.New(ir.KindCompound, "", s1, s2)

	g := cfg.NewGraph()
	sg, err := cfg.Build(g, m, root, cfg.WithGranularity(cfg.OneStatementPerBlock))
	require.NoError(t, err)

	l := lattice.NewBitsetPowerset(1)
	identity := func(_ string, in *bitset.BitSet) *bitset.BitSet { return in.Clone() }

	boundary := bitset.New(1)
	boundary.Set(0)

	res, err := dataflow.Solve(dataflow.Problem[*bitset.BitSet]{
		Graph:     g,
		Sub:       *sg,
		Lattice:   l,
		Transfer:  identity,
		Boundary:  boundary,
		Direction: dataflow.Backward,
	})
	require.NoError(t, err)

	for _, id := range g.Blocks() {
		if id == g.ExternalID() {
			continue
		}
		assert.True(t, res.In[id].Test(0), "block %s should have the boundary bit set in In", id)
	}
}

// TestSolve_MonotonicityViolationIsDetected exercises the solver's own
// safety check: a transfer that shrinks its output once its input grows
// must be reported, never silently accepted. The loop header
// below is fed back its own body's output via the back edge cfg.Build
// wires for a while-loop, so it is guaranteed to be re-visited with a
// strictly larger input than its first call, which this transfer uses to
// flip from growing to shrinking.
func TestSolve_MonotonicityViolationIsDetected(t *testing.T) {
	m := ir.NewManager()
	cond := m.New(ir.KindLiteral, "cond")
	body := simpleStmt(m, "body")
	root := m.New(ir.KindWhile, "", cond, body)

	g := cfg.NewGraph()
	sg, err := cfg.Build(g, m, root)
	require.NoError(t, err)

	header := g.Successors(sg.Entry)[0].To

	l := lattice.NewBitsetPowerset(1)
	flipFlop := func(id string, in *bitset.BitSet) *bitset.BitSet {
		if id != header {
			return in.Clone()
		}
		if in.Test(0) {
			return bitset.New(1)
		}
		out := in.Clone()
		out.Set(0)
		return out
	}

	_, err = dataflow.Solve(dataflow.Problem[*bitset.BitSet]{
		Graph:     g,
		Sub:       *sg,
		Lattice:   l,
		Transfer:  flipFlop,
		Boundary:  bitset.New(1),
		Direction: dataflow.Forward,
	})
	assert.ErrorIs(t, err, dataflow.ErrMonotonicityViolation)
}

func TestSolve_OnVisitHookObservesEveryBlockAtLeastOnce(t *testing.T) {
	m := ir.NewManager()
	s1, s2 := simpleStmt(m, "a"), simpleStmt(m, "b")
	root := m.New(ir.KindCompound, "", s1, s2)

	g := cfg.NewGraph()
	sg, err := cfg.Build(g, m, root)
	require.NoError(t, err)

	l := lattice.NewBitsetPowerset(1)
	identity := func(_ string, in *bitset.BitSet) *bitset.BitSet { return in.Clone() }

	visited := map[string]bool{}
	_, err = dataflow.Solve(dataflow.Problem[*bitset.BitSet]{
		Graph:     g,
		Sub:       *sg,
		Lattice:   l,
		Transfer:  identity,
		Boundary:  bitset.New(1),
		Direction: dataflow.Forward,
	}, dataflow.WithOnVisit(func(id string) { visited[id] = true }))
	require.NoError(t, err)
	assert.True(t, visited[sg.Entry])
	for _, id := range g.Blocks() {
		assert.True(t, visited[id], "block %s never visited", id)
	}
}
