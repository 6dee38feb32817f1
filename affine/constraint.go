package affine

import "fmt"

// Relation is the comparison an affine constraint asserts on its function.
type Relation int

const (
	LE Relation = iota // ≤ 0
	EQ                 // = 0
	NE                 // ≠ 0
)

// Constraint is (affine function f, relation) asserting f(...) REL 0.
type Constraint struct {
	F   *Func
	Rel Relation
}

func (c Constraint) String() string {
	sym := map[Relation]string{LE: "<=", EQ: "==", NE: "!="}[c.Rel]
	return fmt.Sprintf("%s %s 0", c.F, sym)
}

// Combiner is a constraint-combiner tree: a leaf Constraint, a divisibility
// atom, a negation, or a conjunction/disjunction of sub-combiners, always
// convertible to DNF.
type Combiner struct {
	leaf     *Constraint
	div      *DivConstraint
	negate   *Combiner
	and      []*Combiner
	or       []*Combiner
}

// DivConstraint is a Presburger divisibility atom: f(...) ≡ 0 (mod m). It is
// the one non-linear-inequality shape this algebra needs, introduced by
// strip-mining's "ι mod T = 0" domain constraint. The integer-set library
// this facade wraps is Presburger-complete and natively supports
// divisibility, so the atom is carried symbolically rather than encoded
// through an extra existential iterator.
type DivConstraint struct {
	F   *Func
	Mod int64
}

func (d DivConstraint) String() string { return fmt.Sprintf("%s == 0 (mod %d)", d.F, d.Mod) }

// Leaf wraps a single Constraint as a Combiner.
func Leaf(c Constraint) *Combiner { return &Combiner{leaf: &c} }

// Div wraps a single DivConstraint as a Combiner.
func Div(d DivConstraint) *Combiner { return &Combiner{div: &d} }

// Not negates a Combiner.
func Not(c *Combiner) *Combiner { return &Combiner{negate: c} }

// And conjoins combiners.
func And(cs ...*Combiner) *Combiner { return &Combiner{and: cs} }

// Or disjoins combiners.
func Or(cs ...*Combiner) *Combiner { return &Combiner{or: cs} }

// Normalize rewrites <, >, ≠ into conjunctions/disjunctions of ≤ / = / ≥ so
// downstream consumers (the integer-set library, IR lowering) see only
// normalized forms. Because this algebra only ever constructs
// constraints with Relation ∈ {LE, EQ, NE}, normalization's only real job is
// to expand NE into a disjunction of two LE constraints (f<0 ∨ -f<0, encoded
// here as f+1<=0 ∨ -f+1<=0 over the integers) and to push negation inward
// (De Morgan) until only leaves are negated, then resolve negated leaves by
// relation-flipping.
func Normalize(c *Combiner) *Combiner {
	if c.leaf != nil {
		return normalizeLeaf(*c.leaf, false)
	}
	if c.div != nil {
		return c // divisibility atoms are already normal form
	}
	if c.negate != nil {
		return normalizeNegated(c.negate)
	}
	if c.and != nil {
		out := make([]*Combiner, len(c.and))
		for i, sub := range c.and {
			out[i] = Normalize(sub)
		}
		return And(out...)
	}
	out := make([]*Combiner, len(c.or))
	for i, sub := range c.or {
		out[i] = Normalize(sub)
	}
	return Or(out...)
}

func normalizeLeaf(c Constraint, negated bool) *Combiner {
	rel := c.Rel
	if negated {
		switch rel {
		case LE: // ¬(f<=0) == f>0 == (-f+1<=0) over integers
			neg, _ := negateFunc(c.F)
			shifted, _ := shiftConstant(neg, 1)
			return Leaf(Constraint{F: shifted, Rel: LE})
		case EQ: // ¬(f==0) == f!=0, expanded like any other NE leaf
			return normalizeLeaf(Constraint{F: c.F, Rel: NE}, false)
		case NE: // ¬(f!=0) == f==0
			return Leaf(Constraint{F: c.F, Rel: EQ})
		}
	}
	if rel == NE {
		neg, _ := negateFunc(c.F)
		left, _ := shiftConstant(c.F, 1)
		right, _ := shiftConstant(neg, 1)
		return Or(Leaf(Constraint{F: left, Rel: LE}), Leaf(Constraint{F: right, Rel: LE}))
	}
	return Leaf(c)
}

func normalizeNegated(c *Combiner) *Combiner {
	if c.leaf != nil {
		return normalizeLeaf(*c.leaf, true)
	}
	if c.div != nil {
		// Negated divisibility is outside this algebra's needs (strip-mining
		// only ever asserts divisibility positively); left un-expanded.
		return Not(c)
	}
	if c.negate != nil {
		return Normalize(c.negate) // double negation cancels
	}
	if c.and != nil {
		out := make([]*Combiner, len(c.and))
		for i, sub := range c.and {
			out[i] = normalizeNegated(sub)
		}
		return Or(out...) // De Morgan
	}
	out := make([]*Combiner, len(c.or))
	for i, sub := range c.or {
		out[i] = normalizeNegated(sub)
	}
	return And(out...)
}

// AsConjunctionOfLeaves reports whether c is purely a conjunction of leaf
// constraints (no Or, no unresolved Not) and, if so, returns them flattened.
// Callers that need to reason about a domain's bounds directly (e.g.
// islfacade's cardinality computation) use this instead of reaching into
// Combiner's unexported fields.
func AsConjunctionOfLeaves(c *Combiner) ([]Constraint, bool) {
	if c.leaf != nil {
		return []Constraint{*c.leaf}, true
	}
	if c.and != nil {
		var out []Constraint
		for _, sub := range c.and {
			leaves, ok := AsConjunctionOfLeaves(sub)
			if !ok {
				return nil, false
			}
			out = append(out, leaves...)
		}
		return out, true
	}
	return nil, false
}

func negateFunc(f *Func) (*Func, error) {
	ic := make([]int64, len(f.iterCoefs))
	for i, v := range f.iterCoefs {
		ic[i] = -v
	}
	pc := make([]int64, len(f.paramCoefs))
	for i, v := range f.paramCoefs {
		pc[i] = -v
	}
	return &Func{vector: f.vector, iterCoefs: ic, paramCoefs: pc, constant: -f.constant, iterAtBuild: len(ic)}, nil
}

func shiftConstant(f *Func, delta int64) (*Func, error) {
	out := *f
	out.constant += delta
	return &out, nil
}
