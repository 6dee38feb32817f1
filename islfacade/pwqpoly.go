package islfacade

import "github.com/parastat/parastat/affine"

// PwQPoly is a piecewise quasi-polynomial: a closed form for the
// cardinality of a parametric integer set. This engine represents only the
// box-constrained
// subset it can solve exactly: for each iterator it needs a pair of bounds
// li <= i <= ui expressed directly as leaf constraints, with li/ui integer
// constants. A set whose vector has any parameter is rejected by GetCard
// with ErrUnsupportedSet; no symbolic (parametric) form is represented.
type PwQPoly struct {
	handle
	// constant is the closed-form cardinality; every PwQPoly GetCard returns
	// has isConstant set.
	constant   int64
	isConstant bool
}

// Constant returns the closed-form value and true when the cardinality was
// resolved to a compile-time constant.
func (p *PwQPoly) Constant() (int64, bool) { return p.constant, p.isConstant }

// GetCard computes the cardinality of s as a PwQPoly. It returns
// ErrUnsupportedSet if s's domain is not a conjunction of single-iterator
// box bounds (the only shape this exact-integer engine solves).
func GetCard(ctx *Context, s *Set) (*PwQPoly, error) {
	if s.domain.IsEmpty() {
		return &PwQPoly{handle: newHandle(ctx), constant: 0, isConstant: true}, nil
	}
	if s.domain.IsUniverse() {
		return nil, ErrUnsupportedSet // infinite cardinality, not representable as a single constant
	}
	bounds, ok := extractBoxBounds(s.domain)
	if !ok {
		return nil, ErrUnsupportedSet
	}
	total := int64(1)
	for _, b := range bounds {
		width := b.hi - b.lo + 1
		if width <= 0 {
			return &PwQPoly{handle: newHandle(ctx), constant: 0, isConstant: true}, nil
		}
		total *= width
	}
	return &PwQPoly{handle: newHandle(ctx), constant: total, isConstant: true}, nil
}

// UpperBound returns a conservative upper bound on s's cardinality; for the
// constant case it is exact.
func UpperBound(ctx *Context, s *Set) (int64, error) {
	p, err := GetCard(ctx, s)
	if err != nil {
		return 0, err
	}
	v, _ := p.Constant()
	return v, nil
}

type boxBound struct{ lo, hi int64 }

// extractBoxBounds walks a Combiner looking for exactly the shape
// And(Leaf(i - lo <= 0 negated as lo - i <= 0), Leaf(i - hi <= 0), ...) per
// iterator — i.e. a conjunction of single-iterator, constant-bound
// inequalities. Anything else (disjunctions, multi-iterator leaves,
// parameter-dependent bounds) is reported unsupported.
func extractBoxBounds(d *affine.Domain) (map[int]*boxBound, bool) {
	c := d.Combiner()
	if c == nil {
		return nil, false
	}
	bounds := map[int]*boxBound{}
	leaves, ok := flattenAnd(c)
	if !ok {
		return nil, false
	}
	for _, leaf := range leaves {
		if leaf.Rel != affine.LE {
			return nil, false
		}
		f := leaf.F
		if f.Vector().NumParameters() != 0 {
			return nil, false // parameter-dependent bound: not constant-foldable here
		}
		idx, coef, ok := singleNonZeroIter(f)
		if !ok {
			return nil, false
		}
		b := bounds[idx]
		if b == nil {
			b = &boxBound{lo: -1 << 62, hi: 1 << 62}
			bounds[idx] = b
		}
		// f = coef*i + c <= 0
		switch coef {
		case 1: // i <= -c
			hi := -f.Constant()
			if hi < b.hi {
				b.hi = hi
			}
		case -1: // -i + c <= 0  =>  i >= c
			lo := f.Constant()
			if lo > b.lo {
				b.lo = lo
			}
		default:
			return nil, false
		}
	}
	return bounds, len(bounds) > 0
}

func singleNonZeroIter(f *affine.Func) (idx int, coef int64, ok bool) {
	found := -1
	var c int64
	for i := 0; i < f.Vector().NumIterators(); i++ {
		if v := f.IterCoef(i); v != 0 {
			if found != -1 {
				return 0, 0, false
			}
			found = i
			c = v
		}
	}
	if found == -1 {
		return 0, 0, false
	}
	return found, c, true
}

func flattenAnd(c *affine.Combiner) ([]affine.Constraint, bool) {
	return affine.AsConjunctionOfLeaves(affine.Normalize(c))
}
