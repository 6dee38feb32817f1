package dataflow

import (
	"github.com/parastat/parastat/cfg"
	"github.com/parastat/parastat/lattice"
)

// TransferFunc computes a block's output fact from its merged input fact.
// It must be a monotone transfer function per block.
type TransferFunc[T any] func(blockID string, in T) T

// Problem is one dataflow instance: a sub-graph, a lattice to solve over, a
// transfer function, a seed value for the sub-graph's boundary block, and a
// direction.
type Problem[T any] struct {
	Graph     *cfg.Graph
	Sub       cfg.SubGraph
	Lattice   *lattice.Lattice[T]
	Transfer  TransferFunc[T]
	Boundary  T
	Direction Direction
}

// Result holds the per-block In/Out facts the solver converged to.
type Result[T any] struct {
	In  map[string]T
	Out map[string]T
}

// Solve iterates a worklist until every block's computed fact stabilizes.
// Forward problems seed the entry block's In with Boundary and
// enqueue successors on change; backward problems seed the exit block's Out
// and enqueue predecessors on change. Convergence is the caller's
// responsibility to guarantee (finite-height lattice, monotone transfer);
// the solver itself only detects and reports a violation, never loops
// forever trying to "fix" one.
func Solve[T any](p Problem[T], opts ...Option) (result *Result[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			if herr := lattice.RecoverBoundFailure(r); herr != nil {
				result, err = nil, herr
				return
			}
			panic(r)
		}
	}()

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	blocks := p.Graph.Blocks()
	in := make(map[string]T, len(blocks))
	out := make(map[string]T, len(blocks))
	for _, id := range blocks {
		in[id] = p.Lattice.Bottom
		out[id] = p.Lattice.Bottom
	}

	seed := p.Sub.Entry
	if p.Direction == Backward {
		seed = p.Sub.Exit
	}
	if _, ok := in[seed]; !ok {
		return nil, ErrUnknownBlock
	}
	if p.Direction == Forward {
		in[seed] = p.Boundary
	} else {
		out[seed] = p.Boundary
	}

	// Every block starts on the worklist, not just the seed: a boundary value
	// equal to Bottom (the common case, e.g. "no definitions reach entry")
	// produces no detectable change at the seed itself, so relying on
	// change-propagation alone to reach the rest of the graph would leave
	// every other block stuck at Bottom forever. Seeding the whole graph
	// guarantees every block is visited at least once; the monotone transfer
	// and the worklist's own change-driven re-enqueueing still converge it to
	// a fixpoint from there.
	worklist := make([]string, len(blocks))
	copy(worklist, blocks)
	queued := make(map[string]bool, len(blocks))
	for _, id := range blocks {
		queued[id] = true
	}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false
		o.onVisit(id)

		if p.Direction == Forward {
			merged := mergeFrom(p.Lattice, in[id], p.Graph.Predecessors(id), out, func(e cfg.Edge) string { return e.From })
			in[id] = merged
			newOut := p.Transfer(id, merged)
			if !p.Lattice.LessOrEqual(out[id], newOut) {
				return nil, ErrMonotonicityViolation
			}
			if latticeEqual(p.Lattice, out[id], newOut) {
				continue
			}
			out[id] = newOut
			for _, e := range p.Graph.Successors(id) {
				if !queued[e.To] {
					queued[e.To] = true
					worklist = append(worklist, e.To)
				}
			}
		} else {
			merged := mergeFrom(p.Lattice, out[id], p.Graph.Successors(id), in, func(e cfg.Edge) string { return e.To })
			out[id] = merged
			newIn := p.Transfer(id, merged)
			if !p.Lattice.LessOrEqual(in[id], newIn) {
				return nil, ErrMonotonicityViolation
			}
			if latticeEqual(p.Lattice, in[id], newIn) {
				continue
			}
			in[id] = newIn
			for _, e := range p.Graph.Predecessors(id) {
				if !queued[e.From] {
					queued[e.From] = true
					worklist = append(worklist, e.From)
				}
			}
		}
	}

	return &Result[T]{In: in, Out: out}, nil
}

// mergeFrom folds the lattice join of every neighbor's fact (from the
// "other" table: predecessor Outs for a forward merge, successor Ins for a
// backward merge) into cur.
func mergeFrom[T any](l *lattice.Lattice[T], cur T, edges []cfg.Edge, other map[string]T, pick func(cfg.Edge) string) T {
	for _, e := range edges {
		l.JoinAssign(&cur, other[pick(e)])
	}
	return cur
}

func latticeEqual[T any](l *lattice.Lattice[T], a, b T) bool {
	return l.LessOrEqual(a, b) && l.LessOrEqual(b, a)
}
