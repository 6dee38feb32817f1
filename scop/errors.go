package scop

import "github.com/pkg/errors"

// ErrModelingLimitation is a modeling-limitation error: a feature
// the current core does not support (here: a loop nest or access pattern
// that cannot be modeled affinely). Callers must treat the query's result as
// the conservative top — extraction simply does not mark the region as a
// SCoP, so downstream queries naturally see nothing there.
var ErrModelingLimitation = errors.New("scop: construct is not representable by the affine model")

// ErrSemanticCheckFailed is a semantic-check failure: IR the
// core produced (via ToIR, after a transform) failed the semantic checker.
// This is fatal for the transform that produced it.
var ErrSemanticCheckFailed = errors.New("scop: emitted IR failed the semantic checker")

// ErrUnknownTransform is returned when a transform is requested against a
// Scop shape it cannot apply to (e.g. interchanging rows out of range).
var ErrUnknownTransform = errors.New("scop: transform not applicable to this scop")
