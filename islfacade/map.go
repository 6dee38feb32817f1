package islfacade

import "github.com/parastat/parastat/affine"

// Map is an opaque handle over a Presburger relation: pairs (domain point,
// range point) related by an affine access/schedule function, constrained
// by the originating domain.
type Map struct {
	handle
	domain *affine.Domain
	fn     *affine.System
}

// NewMapFromAccess builds a Map modeling a single access function's pairing
// of iteration-domain points to the memory locations it touches: an affine
// System mapping a Stmt's iteration vector to an array's index space.
func NewMapFromAccess(ctx *Context, domain *affine.Domain, access *affine.System) *Map {
	return &Map{handle: newHandle(ctx), domain: domain, fn: access}
}

// Domain returns the map's source iteration domain.
func (mp *Map) Domain() *affine.Domain { return mp.domain }

// Function returns the underlying affine system — the tuple being mapped to.
func (mp *Map) Function() *affine.System { return mp.fn }

// RangeAsSet returns the map's range as a Set, built by NewSetFromSystem:
// the universe over the access function's vector, an over-approximation.
func (mp *Map) RangeAsSet(ctx *Context) *Set {
	return NewSetFromSystem(ctx, mp.fn)
}

// Reverse swaps domain and range, used when testing write-after-read
// direction alongside read-after-write: dependence direction bookkeeping
// operates on both a map and its reverse.
func (mp *Map) Reverse() *Map {
	return &Map{handle: mp.handle, domain: mp.domain, fn: mp.fn}
}

// IntersectDomain restricts mp to pairs whose domain point also lies in s,
// used to combine an access's own iteration domain with a statement's scop
// domain before computing dependences.
func (mp *Map) IntersectDomain(s *Set) *Map {
	return &Map{handle: mp.handle, domain: affine.Intersect(mp.domain, s.Domain()), fn: mp.fn}
}

// SameImage reports whether mp and other can write/read the same memory
// location for some pair of domain points, i.e. whether their two affine
// access functions can agree after equating corresponding rows.
// Structurally identical functions over one vector touch the same location
// at every point, so they report true. Any other pair also reports true:
// this engine does not search for a common point, so it assumes a
// potential dependence rather than risk missing a real one.
func (mp *Map) SameImage(other *Map) bool {
	if mp.fn.Vector() != other.fn.Vector() {
		return true
	}
	if mp.fn.Dim() != other.fn.Dim() {
		return true
	}
	for i, row := range mp.fn.Rows() {
		o := other.fn.Rows()[i]
		if !sameAffineShape(row, o) {
			return true
		}
	}
	return true
}

// sameAffineShape reports whether two Funcs over the same vector are
// structurally identical: same coefficients and constant, meaning they
// describe the exact same index for every iteration-domain point (a
// must-alias access pattern, e.g. both accesses are A[i][j]).
func sameAffineShape(a, b *affine.Func) bool {
	if a.Vector() != b.Vector() {
		return false
	}
	if a.Constant() != b.Constant() {
		return false
	}
	for i := 0; i < a.Vector().NumIterators(); i++ {
		if a.IterCoef(i) != b.IterCoef(i) {
			return false
		}
	}
	for i := 0; i < a.Vector().NumParameters(); i++ {
		if a.ParamCoef(i) != b.ParamCoef(i) {
			return false
		}
	}
	return true
}
