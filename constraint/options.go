package constraint

import "errors"

// ErrOptionViolation is returned when an invalid SolverOption is supplied.
var ErrOptionViolation = errors.New("constraint: invalid option supplied")

// SolverOption configures Solve/SolveLazy via functional arguments,
// mirroring dataflow.Option.
type SolverOption func(*solverOptions)

type solverOptions struct {
	onStep func(ValueID)
	err    error
}

func defaultSolverOptions() solverOptions {
	return solverOptions{onStep: func(ValueID) {}}
}

// WithOnStep registers a callback invoked every time the solver pops a
// ValueID off the worklist, in processing order — the library's logging
// surface, mirroring dataflow.WithOnVisit.
func WithOnStep(fn func(ValueID)) SolverOption {
	return func(o *solverOptions) {
		if fn != nil {
			o.onStep = fn
		}
	}
}
