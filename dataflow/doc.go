// Package dataflow solves generic monotone dataflow-framework problems over
// a cfg.Graph: a worklist iterates every block's transfer function, forward
// or backward, to a fixpoint,
// asserting (returning ErrMonotonicityViolation) if a transfer function
// ever breaks the monotonicity the solver's termination argument depends
// on.
package dataflow
