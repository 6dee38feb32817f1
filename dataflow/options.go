package dataflow

import (
	"errors"
)

// Sentinel errors for dataflow solving.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("dataflow: invalid option supplied")

	// ErrMonotonicityViolation reports that a transfer
	// function produced an output not ⊒ its previous output while its
	// inputs only grew. This indicates a bug in the caller's transfer
	// function, not a modeling limitation.
	ErrMonotonicityViolation = errors.New("dataflow: transfer function violated monotonicity")

	// ErrUnknownBlock is returned when a Problem references a block ID the
	// given cfg.Graph does not contain.
	ErrUnknownBlock = errors.New("dataflow: unknown block ID")
)

// Direction selects which end of the sub-graph is seeded and which
// neighbor set a block enqueues on change.
type Direction int

const (
	// Forward seeds the entry block and propagates to successors.
	Forward Direction = iota
	// Backward seeds the exit block and propagates to predecessors.
	Backward
)

// Option configures Solve via functional arguments, mirroring lvlath's
// bfs.Option idiom.
type Option func(*solveOptions)

type solveOptions struct {
	onVisit func(blockID string)
	err     error
}

// DefaultOptions returns a no-op OnVisit hook.
func DefaultOptions() solveOptions {
	return solveOptions{onVisit: func(string) {}}
}

// WithOnVisit registers a callback invoked every time the solver processes
// a block off the worklist, in processing order — useful for tests and
// tracing, mirroring bfs.WithOnVisit.
func WithOnVisit(fn func(blockID string)) Option {
	return func(o *solveOptions) {
		if fn != nil {
			o.onVisit = fn
		}
	}
}
