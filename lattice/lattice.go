// Package lattice provides abstract bounded lattices: meet/join, the
// induced order, and distinguished top/bottom elements.
//
// A Lattice[T] is built from explicit ⊤, ⊥, and a user-supplied meet-assign
// and/or join-assign; less-or-equal is derived. Special elements short-circuit: meeting
// with ⊤ returns the other operand unchanged, meeting with ⊥ returns ⊥, and
// symmetrically for join — callers never need to special-case ⊤/⊥ themselves.
package lattice

import "fmt"

// ErrBoundNotDefined is a hard error: a lattice operation was invoked outside
// its domain (e.g. Join called on a lower-semilattice with no join operation
// supplied). It indicates a framework bug, not a modeling limitation. A
// caller driving a whole analysis run recovers it at that run's own entry
// point (see dataflow.Solve) and reports it as an ordinary error instead of
// letting the panic reach its own caller.
var ErrBoundNotDefined = fmt.Errorf("lattice: operation not defined on this lattice")

// RecoverBoundFailure inspects a value recovered from a panic and, if it is
// ErrBoundNotDefined, returns it as an ordinary error. Otherwise it returns
// nil, signaling the caller should re-panic with the original value
// unchanged.
func RecoverBoundFailure(r interface{}) error {
	if err, ok := r.(error); ok && err == ErrBoundNotDefined {
		return err
	}
	return nil
}

// MeetAssign mutates a in place to a ⊓ b and reports whether a changed.
// Implementations must be idempotent (meetAssign(a, a) never changes a),
// commutative up to the caller's equality, and associative.
type MeetAssign[T any] func(a *T, b T) (changed bool)

// JoinAssign mutates a in place to a ⊔ b and reports whether a changed.
type JoinAssign[T any] func(a *T, b T) (changed bool)

// Equal reports structural equality of two lattice elements. Reference-equal
// values (covered by the hash-consing guarantee of dvalue) are always equal
// without invoking this function; see Lattice.LessOrEqual.
type Equal[T any] func(a, b T) bool

// Lattice is a bounded lattice (D, ⊑, ⊓, ⊔, ⊤, ⊥) over element type T.
//
// Variant governs which of Join/Meet may be nil:
//   - Full: both Meet and Join are set.
//   - UpperSemi: only Join is set; Meet must not be called.
//   - LowerSemi: only Meet is set; Join must not be called.
type Lattice[T any] struct {
	Top    T
	Bottom T

	meet  MeetAssign[T]
	join  JoinAssign[T]
	equal Equal[T]

	variant Variant
}

// Variant names which operations a Lattice supports.
type Variant int

const (
	Full Variant = iota
	UpperSemi
	LowerSemi
)

// New builds a full lattice from explicit top, bottom, meet, join and an
// equality predicate used only for the reference/value short-circuit in
// LessOrEqual: two operands equal under the caller's own notion of identity
// are ⊑-comparable without ever invoking meet or join.
func New[T any](top, bottom T, meet MeetAssign[T], join JoinAssign[T], equal Equal[T]) *Lattice[T] {
	return &Lattice[T]{Top: top, Bottom: bottom, meet: meet, join: join, equal: equal, variant: Full}
}

// NewLowerSemi builds a meet-only lattice. Join panics with ErrBoundNotDefined.
func NewLowerSemi[T any](top, bottom T, meet MeetAssign[T], equal Equal[T]) *Lattice[T] {
	return &Lattice[T]{Top: top, Bottom: bottom, meet: meet, equal: equal, variant: LowerSemi}
}

// NewUpperSemi builds a join-only lattice. Meet panics with ErrBoundNotDefined.
func NewUpperSemi[T any](top, bottom T, join JoinAssign[T], equal Equal[T]) *Lattice[T] {
	return &Lattice[T]{Top: top, Bottom: bottom, join: join, equal: equal, variant: UpperSemi}
}

// MeetAssign sets a to a ⊓ b and reports whether a changed. ⊤ and ⊥
// short-circuit without invoking the user operation: meet(⊤,x)=x,
// meet(⊥,x)=⊥.
func (l *Lattice[T]) MeetAssign(a *T, b T) bool {
	if l.equal(*a, l.Top) {
		changed := !l.equal(*a, b)
		*a = b
		return changed
	}
	if l.equal(b, l.Top) {
		return false
	}
	if l.equal(*a, l.Bottom) || l.equal(b, l.Bottom) {
		changed := !l.equal(*a, l.Bottom)
		*a = l.Bottom
		return changed
	}
	if l.meet == nil {
		panic(ErrBoundNotDefined)
	}
	return l.meet(a, b)
}

// JoinAssign sets a to a ⊔ b and reports whether a changed. ⊤ and ⊥
// short-circuit symmetrically to MeetAssign.
func (l *Lattice[T]) JoinAssign(a *T, b T) bool {
	if l.equal(*a, l.Bottom) {
		changed := !l.equal(*a, b)
		*a = b
		return changed
	}
	if l.equal(b, l.Bottom) {
		return false
	}
	if l.equal(*a, l.Top) || l.equal(b, l.Top) {
		changed := !l.equal(*a, l.Top)
		*a = l.Top
		return changed
	}
	if l.join == nil {
		panic(ErrBoundNotDefined)
	}
	return l.join(a, b)
}

// LessOrEqual reports a ⊑ b by probing whether meeting a with b leaves a
// unchanged, i.e. a ⊓ b = a. Reference/value-identical operands are equal
// without invoking the user meet operation.
func (l *Lattice[T]) LessOrEqual(a, b T) bool {
	if l.equal(a, b) {
		return true
	}
	probe := a
	changed := l.MeetAssign(&probe, b)
	return !changed
}

// Variant reports which operations this lattice supports.
func (l *Lattice[T]) Variant() Variant { return l.variant }
