// Package affine implements the iteration vector / affine function /
// constraint / domain / system algebra that the scop package's SCoP model
// is built from.
package affine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotAffine is raised when an IR expression cannot be modeled as a linear
// form over the current iteration vector. The SCoP extractor catches it and
// abandons the region conservatively.
var ErrNotAffine = errors.New("affine: expression is not a linear form over the iteration vector")

// ErrVariableNotFound is a hard error: an affine form was rebased onto a
// vector missing one of its variables. Re-basing only ever widens a vector
// (IterVectors grow by appending, never shrink), so hitting this means a
// caller passed the wrong target vector, not an ordinary modeling limit.
// ToBase panics with it rather than returning it, mirroring
// lattice.ErrBoundNotDefined; a caller driving a whole analysis run recovers
// it at that run's own entry point (see scop.Scop.AddStmt and
// scop.StripMine) and reports it as an
// ordinary error instead of letting the panic reach its own caller.
var ErrVariableNotFound = errors.New("affine: variable not present in target iteration vector")

// RecoverRebaseFailure inspects a value recovered from a panic and, if it is
// this package's hard rebase error, returns it as an ordinary error.
// Otherwise it returns nil, signaling the caller should re-panic with the
// original value unchanged.
func RecoverRebaseFailure(r interface{}) error {
	if err, ok := r.(error); ok && errors.Is(err, ErrVariableNotFound) {
		return err
	}
	return nil
}

// IterVector is an ordered list of iterators, an ordered list of symbolic
// parameters, and an implicit constant term. New iterators/parameters are
// appended; never removed.
type IterVector struct {
	iterators  []string
	parameters []string
}

// NewIterVector returns an empty iteration vector.
func NewIterVector() *IterVector { return &IterVector{} }

// AddIterator appends a new iterator and returns its position.
func (v *IterVector) AddIterator(name string) int {
	v.iterators = append(v.iterators, name)
	return len(v.iterators) - 1
}

// AddParameter appends a new parameter and returns its position.
func (v *IterVector) AddParameter(name string) int {
	v.parameters = append(v.parameters, name)
	return len(v.parameters) - 1
}

// NumIterators returns how many iterators v currently holds.
func (v *IterVector) NumIterators() int { return len(v.iterators) }

// NumParameters returns how many parameters v currently holds.
func (v *IterVector) NumParameters() int { return len(v.parameters) }

// IteratorIndex returns the position of name among iterators, or -1.
func (v *IterVector) IteratorIndex(name string) int { return indexOf(v.iterators, name) }

// ParameterIndex returns the position of name among parameters, or -1.
func (v *IterVector) ParameterIndex(name string) int { return indexOf(v.parameters, name) }

// IteratorName returns the name of the i-th iterator.
func (v *IterVector) IteratorName(i int) string { return v.iterators[i] }

// Clone returns a new, independent IterVector with the same iterators and
// parameters in the same order. Transformations that need to grow a vector
// (strip-mining, tiling) clone first and grow the clone, so that Funcs
// already built against the original vector are never invalidated by a
// later in-place append: new iterators/parameters are always appended and
// never removed, since other code still depends on having a fixed shape.
func (v *IterVector) Clone() *IterVector {
	return &IterVector{
		iterators:  append([]string(nil), v.iterators...),
		parameters: append([]string(nil), v.parameters...),
	}
}

// ParameterName returns the name of the i-th parameter.
func (v *IterVector) ParameterName(i int) string { return v.parameters[i] }

func indexOf(xs []string, x string) int {
	for i, s := range xs {
		if s == x {
			return i
		}
	}
	return -1
}

// Extends reports whether w is an extension of v: every iterator/parameter
// of v appears, in the same order, as a prefix of the corresponding list in
// w.
func (v *IterVector) Extends(w *IterVector) bool {
	return isPrefix(v.iterators, w.iterators) && isPrefix(v.parameters, w.parameters)
}

func isPrefix(short, long []string) bool {
	if len(short) > len(long) {
		return false
	}
	for i, s := range short {
		if long[i] != s {
			return false
		}
	}
	return true
}

// Merge returns the distinct-union extension of v and w: every iterator and
// parameter of both, with each side's original relative order preserved.
// Callers typically hold v fixed and merge a narrower w's new names in.
func Merge(v, w *IterVector) *IterVector {
	out := &IterVector{
		iterators:  mergeNames(v.iterators, w.iterators),
		parameters: mergeNames(v.parameters, w.parameters),
	}
	return out
}

func mergeNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Func is an affine function: integer coefficients over an iteration
// vector's iterators and parameters, plus a constant term, plus a separator
// recording the iterator count at construction time (used to re-base when
// the vector grows).
type Func struct {
	vector       *IterVector
	iterCoefs    []int64
	paramCoefs   []int64
	constant     int64
	iterAtBuild  int // separator: len(iterCoefs) when this Func was built
}

// NewFunc builds an affine function over v with the given iterator and
// parameter coefficients (must match v's current lengths) plus a constant.
func NewFunc(v *IterVector, iterCoefs, paramCoefs []int64, constant int64) (*Func, error) {
	if len(iterCoefs) != v.NumIterators() {
		return nil, errors.Wrapf(ErrNotAffine, "iterator coefficient count %d != vector size %d", len(iterCoefs), v.NumIterators())
	}
	if len(paramCoefs) != v.NumParameters() {
		return nil, errors.Wrapf(ErrNotAffine, "parameter coefficient count %d != vector size %d", len(paramCoefs), v.NumParameters())
	}
	ic := append([]int64(nil), iterCoefs...)
	pc := append([]int64(nil), paramCoefs...)
	return &Func{vector: v, iterCoefs: ic, paramCoefs: pc, constant: constant, iterAtBuild: len(ic)}, nil
}

// Vector returns the iteration vector f is defined over.
func (f *Func) Vector() *IterVector { return f.vector }

// Eval evaluates f at the given iterator and parameter values.
func (f *Func) Eval(iterVals, paramVals []int64) (int64, error) {
	if len(iterVals) != len(f.iterCoefs) || len(paramVals) != len(f.paramCoefs) {
		return 0, errors.New("affine: Eval argument length mismatch")
	}
	sum := f.constant
	for i, c := range f.iterCoefs {
		sum += c * iterVals[i]
	}
	for i, c := range f.paramCoefs {
		sum += c * paramVals[i]
	}
	return sum, nil
}

// Constant returns f's constant term.
func (f *Func) Constant() int64 { return f.constant }

// IterCoef returns the coefficient of iterator i.
func (f *Func) IterCoef(i int) int64 { return f.iterCoefs[i] }

// ParamCoef returns the coefficient of parameter i.
func (f *Func) ParamCoef(i int) int64 { return f.paramCoefs[i] }

// ToBase re-bases f onto a wider iteration vector newIV by looking up each
// term's position by name. Panics with ErrVariableNotFound if newIV is
// narrower than f's own vector, i.e. is missing a variable f references with
// a non-zero coefficient.
func ToBase(f *Func, newIV *IterVector) *Func {
	if f.vector == newIV {
		return f
	}
	iterCoefs := make([]int64, newIV.NumIterators())
	for i, name := range f.vector.iterators {
		j := newIV.IteratorIndex(name)
		if j < 0 {
			if f.iterCoefs[i] != 0 {
				panic(errors.Wrapf(ErrVariableNotFound, "iterator %q", name))
			}
			continue
		}
		iterCoefs[j] = f.iterCoefs[i]
	}
	paramCoefs := make([]int64, newIV.NumParameters())
	for i, name := range f.vector.parameters {
		j := newIV.ParameterIndex(name)
		if j < 0 {
			if f.paramCoefs[i] != 0 {
				panic(errors.Wrapf(ErrVariableNotFound, "parameter %q", name))
			}
			continue
		}
		paramCoefs[j] = f.paramCoefs[i]
	}
	return &Func{vector: newIV, iterCoefs: iterCoefs, paramCoefs: paramCoefs, constant: f.constant, iterAtBuild: len(iterCoefs)}
}

func (f *Func) String() string {
	return fmt.Sprintf("Func(iters=%v, params=%v, c=%d)", f.iterCoefs, f.paramCoefs, f.constant)
}
