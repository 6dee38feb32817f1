package islfacade

import (
	"github.com/parastat/parastat/affine"
)

// Set is an opaque handle over a Presburger set: the points of an iteration
// domain, over that domain's full iteration vector.
type Set struct {
	handle
	domain *affine.Domain
	names  []string
}

// NewSetFromDomain builds a Set from an iteration domain, installing unique
// dimension names in ctx for every iterator of dom's vector. The domain is
// wrapped unchanged: no iterator is projected out, including one the
// domain's own constraints never mention.
func NewSetFromDomain(ctx *Context, dom *affine.Domain) *Set {
	return &Set{handle: newHandle(ctx), domain: dom, names: installVectorNames(ctx, dom.Vector())}
}

// NewSetFromSystem builds a Set for an affine system's image: the universe
// over the system's vector. The rows are not used, so the Set
// over-approximates the image.
func NewSetFromSystem(ctx *Context, sys *affine.System) *Set {
	return &Set{handle: newHandle(ctx), domain: affine.Universe(sys.Vector()), names: installVectorNames(ctx, sys.Vector())}
}

// Domain returns the underlying iteration domain this Set wraps.
func (s *Set) Domain() *affine.Domain { return s.domain }

// Union returns a new Set, s ∪ t, over intersecting vectors (both must
// share a common iteration vector; callers re-base beforehand via
// affine.Rebase).
func (s *Set) Union(t *Set) *Set {
	s.ctx.checkAlive()
	if s.domain.IsUniverse() || t.domain.IsUniverse() {
		return NewSetFromDomain(s.ctx, affine.Universe(s.domain.Vector()))
	}
	if s.domain.IsEmpty() {
		return t
	}
	if t.domain.IsEmpty() {
		return s
	}
	combined := affine.NewDomain(s.domain.Vector(), affine.Or(s.domain.Combiner(), t.domain.Combiner()))
	return NewSetFromDomain(s.ctx, combined)
}

// Intersect returns s ∩ t.
func (s *Set) Intersect(t *Set) *Set {
	s.ctx.checkAlive()
	return NewSetFromDomain(s.ctx, affine.Intersect(s.domain, t.domain))
}

// Subtract returns s \ t, implemented as s ∩ ¬t.
func (s *Set) Subtract(t *Set) *Set {
	s.ctx.checkAlive()
	if t.domain.IsEmpty() {
		return s
	}
	if t.domain.IsUniverse() {
		return NewSetFromDomain(s.ctx, affine.Empty(s.domain.Vector()))
	}
	negated := affine.NewDomain(t.domain.Vector(), affine.Normalize(affine.Not(t.domain.Combiner())))
	return s.Intersect(NewSetFromDomain(s.ctx, negated))
}

// IsEmpty conservatively reports whether s is provably empty. It returns
// false (not provably empty) rather than a wrong "true" when the engine
// cannot decide — satisfiability of a general affine-constraint combiner is
// outside this facade's box-constraint fast path.
func (s *Set) IsEmpty() bool { return s.domain.IsEmpty() }
