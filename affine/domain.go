package affine

// Domain is an iteration domain: a constraint combiner over an iteration
// vector, plus two distinguished states empty and universe.
type Domain struct {
	vector    *IterVector
	combiner  *Combiner // nil iff isEmpty || isUniverse
	isEmpty   bool
	isUniverse bool
}

// Universe returns the universe domain over v: every point of v's space
// satisfies it.
func Universe(v *IterVector) *Domain { return &Domain{vector: v, isUniverse: true} }

// Empty returns the empty domain over v: no point satisfies it.
func Empty(v *IterVector) *Domain { return &Domain{vector: v, isEmpty: true} }

// NewDomain wraps an explicit constraint combiner as a domain.
func NewDomain(v *IterVector, c *Combiner) *Domain { return &Domain{vector: v, combiner: c} }

// IsEmpty reports whether d is the distinguished empty domain.
func (d *Domain) IsEmpty() bool { return d.isEmpty }

// IsUniverse reports whether d is the distinguished universe domain.
func (d *Domain) IsUniverse() bool { return d.isUniverse }

// Vector returns the iteration vector d is defined over.
func (d *Domain) Vector() *IterVector { return d.vector }

// Combiner returns d's underlying constraint tree, or nil for empty/universe.
func (d *Domain) Combiner() *Combiner { return d.combiner }

// Intersect returns a ∩ b as a new Domain, handling empty/universe
// short-circuits without constructing a combiner.
func Intersect(a, b *Domain) *Domain {
	if a.isEmpty || b.isEmpty {
		return Empty(a.vector)
	}
	if a.isUniverse {
		return b
	}
	if b.isUniverse {
		return a
	}
	return NewDomain(a.vector, And(a.combiner, b.combiner))
}

// Rebase re-bases d onto a wider iteration vector, re-basing every leaf
// function via ToBase. Panics (via ToBase) if newIV is narrower than d's own
// vector; callers only ever grow a vector, so that panic signals a caller
// bug, not an ordinary modeling limit.
func Rebase(d *Domain, newIV *IterVector) *Domain {
	if d.isEmpty {
		return Empty(newIV)
	}
	if d.isUniverse {
		return Universe(newIV)
	}
	return NewDomain(newIV, rebaseCombiner(d.combiner, newIV))
}

func rebaseCombiner(c *Combiner, newIV *IterVector) *Combiner {
	switch {
	case c.leaf != nil:
		return Leaf(Constraint{F: ToBase(c.leaf.F, newIV), Rel: c.leaf.Rel})
	case c.div != nil:
		return Div(DivConstraint{F: ToBase(c.div.F, newIV), Mod: c.div.Mod})
	case c.negate != nil:
		return Not(rebaseCombiner(c.negate, newIV))
	case c.and != nil:
		out := make([]*Combiner, len(c.and))
		for i, sub := range c.and {
			out[i] = rebaseCombiner(sub, newIV)
		}
		return And(out...)
	default:
		out := make([]*Combiner, len(c.or))
		for i, sub := range c.or {
			out[i] = rebaseCombiner(sub, newIV)
		}
		return Or(out...)
	}
}
