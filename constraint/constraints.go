package constraint

// UpdateResult classifies what a Constraint's Update call did to its output
// slots: unchanged, incremented, or altered.
type UpdateResult int

const (
	// Unchanged means Update left every output slot exactly as it was.
	Unchanged UpdateResult = iota
	// Incremented means Update added elements to an output slot without
	// removing any (the common case for every monotone constructor below).
	Incremented
	// Altered means Update replaced an output slot's contents in a way that
	// is not a pure superset of the previous value. None of the constructors
	// in this file produce Altered; it is reserved for constraints a caller
	// defines whose outputs can shrink under a caller-supplied non-monotone
	// escape hatch, which this package does not itself provide.
	Altered
)

// Constraint is one edge of the constraint graph: a set of input ValueIDs,
// a set of output ValueIDs, an Update that propagates inputs
// into outputs, and a Check predicate used to validate a converged
// Assignment.
//
// Inputs may be assignment-dependent: the set actually read can depend on
// the current Assignment (e.g. SubsetIf's guard), so Inputs takes the
// Assignment and is re-evaluated by the solver whenever one of its
// previously reported inputs changes.
type Constraint[E comparable] interface {
	Inputs(a *Assignment[E]) []ValueID
	Outputs() []ValueID
	Update(a *Assignment[E]) UpdateResult
	Check(a *Assignment[E]) bool
}

// DynamicConstraint is a Constraint whose input set can grow during solving
// beyond what Inputs alone reports up front, via an
// UpdateDynamicDependencies hook the solver re-invokes whenever any
// already-known input changes. DynamicUnion implements it, for example to
// react to newly discovered callees.
type DynamicConstraint[E comparable] interface {
	Constraint[E]
	// UpdateDynamicDependencies inspects a and returns any newly relevant
	// ValueIDs this constraint has not reported as inputs before. The solver
	// merges these into the constraint's registered input set and ensures
	// they are resolved (for the lazy solver).
	UpdateDynamicDependencies(a *Assignment[E]) []ValueID
}

// Elem models "the constant v is a member of set X" (elem(v,X)).
// It has no inputs: it always asserts V ∈ X regardless of the Assignment.
type Elem[E comparable] struct {
	V E
	X ValueID
}

func (c *Elem[E]) Inputs(*Assignment[E]) []ValueID { return nil }
func (c *Elem[E]) Outputs() []ValueID              { return []ValueID{c.X} }
func (c *Elem[E]) Update(a *Assignment[E]) UpdateResult {
	if a.Add(c.X, c.V) {
		return Incremented
	}
	return Unchanged
}
func (c *Elem[E]) Check(a *Assignment[E]) bool { return a.Contains(c.X, c.V) }

// Subset models X ⊑ Y (subset(X,Y)).
type Subset[E comparable] struct {
	X, Y ValueID
}

func (c *Subset[E]) Inputs(*Assignment[E]) []ValueID { return []ValueID{c.X} }
func (c *Subset[E]) Outputs() []ValueID              { return []ValueID{c.Y} }
func (c *Subset[E]) Update(a *Assignment[E]) UpdateResult {
	if a.AddAll(c.Y, a.Get(c.X)) {
		return Incremented
	}
	return Unchanged
}
func (c *Subset[E]) Check(a *Assignment[E]) bool {
	for e := range a.Get(c.X) {
		if !a.Contains(c.Y, e) {
			return false
		}
	}
	return true
}

// SubsetIf models: if v ∈ X then Y ⊑ Z (subsetIf(v,X,Y,Z)). The guard X is
// read unconditionally; Y is read only once v has been observed in X — an
// assignment-dependent dependency, so Inputs must be re-evaluated whenever
// X changes rather than computed once up front.
type SubsetIf[E comparable] struct {
	V       E
	X, Y, Z ValueID
}

func (c *SubsetIf[E]) Inputs(a *Assignment[E]) []ValueID {
	if a.Contains(c.X, c.V) {
		return []ValueID{c.X, c.Y}
	}
	return []ValueID{c.X}
}
func (c *SubsetIf[E]) Outputs() []ValueID { return []ValueID{c.Z} }
func (c *SubsetIf[E]) Update(a *Assignment[E]) UpdateResult {
	if !a.Contains(c.X, c.V) {
		return Unchanged
	}
	if a.AddAll(c.Z, a.Get(c.Y)) {
		return Incremented
	}
	return Unchanged
}
func (c *SubsetIf[E]) Check(a *Assignment[E]) bool {
	if !a.Contains(c.X, c.V) {
		return true
	}
	for e := range a.Get(c.Y) {
		if !a.Contains(c.Z, e) {
			return false
		}
	}
	return true
}

// MonotoneUnary is a caller-supplied monotone element transform: given one
// element of X, optionally produce one element to add to Y.
type MonotoneUnary[E comparable] func(E) (E, bool)

// SubsetUnary models f(X) ⊑ Y for a monotone f (subsetUnary(X,Y,f)), e.g.
// narrow/expand's path append/prepend.
type SubsetUnary[E comparable] struct {
	X, Y ValueID
	F    MonotoneUnary[E]
}

func (c *SubsetUnary[E]) Inputs(*Assignment[E]) []ValueID { return []ValueID{c.X} }
func (c *SubsetUnary[E]) Outputs() []ValueID               { return []ValueID{c.Y} }
func (c *SubsetUnary[E]) Update(a *Assignment[E]) UpdateResult {
	changed := false
	for e := range a.Get(c.X) {
		if fe, ok := c.F(e); ok {
			if a.Add(c.Y, fe) {
				changed = true
			}
		}
	}
	if changed {
		return Incremented
	}
	return Unchanged
}
func (c *SubsetUnary[E]) Check(a *Assignment[E]) bool {
	for e := range a.Get(c.X) {
		fe, ok := c.F(e)
		if ok && !a.Contains(c.Y, fe) {
			return false
		}
	}
	return true
}

// MonotoneBinary is a caller-supplied monotone element combiner over one
// element each from X and Y.
type MonotoneBinary[E comparable] func(a, b E) (E, bool)

// SubsetBinary models f(X,Y) ⊑ Z (subsetBinary(X,Y,Z,f)).
type SubsetBinary[E comparable] struct {
	X, Y, Z ValueID
	F       MonotoneBinary[E]
}

func (c *SubsetBinary[E]) Inputs(*Assignment[E]) []ValueID { return []ValueID{c.X, c.Y} }
func (c *SubsetBinary[E]) Outputs() []ValueID               { return []ValueID{c.Z} }
func (c *SubsetBinary[E]) Update(a *Assignment[E]) UpdateResult {
	changed := false
	for x := range a.Get(c.X) {
		for y := range a.Get(c.Y) {
			if r, ok := c.F(x, y); ok {
				if a.Add(c.Z, r) {
					changed = true
				}
			}
		}
	}
	if changed {
		return Incremented
	}
	return Unchanged
}
func (c *SubsetBinary[E]) Check(a *Assignment[E]) bool {
	for x := range a.Get(c.X) {
		for y := range a.Get(c.Y) {
			r, ok := c.F(x, y)
			if ok && !a.Contains(c.Z, r) {
				return false
			}
		}
	}
	return true
}

// IfBigger models: if |X| >= Threshold then Y ⊑ Z — useful for gating
// known-arity call-site modeling, where a call site's argument set is only
// propagated to a callee's formal parameters once the callee's arity has
// stabilized at or above Threshold candidates.
type IfBigger[E comparable] struct {
	X         ValueID
	Threshold int
	Y, Z      ValueID
}

func (c *IfBigger[E]) Inputs(a *Assignment[E]) []ValueID {
	if a.Size(c.X) >= c.Threshold {
		return []ValueID{c.X, c.Y}
	}
	return []ValueID{c.X}
}
func (c *IfBigger[E]) Outputs() []ValueID { return []ValueID{c.Z} }
func (c *IfBigger[E]) Update(a *Assignment[E]) UpdateResult {
	if a.Size(c.X) < c.Threshold {
		return Unchanged
	}
	if a.AddAll(c.Z, a.Get(c.Y)) {
		return Incremented
	}
	return Unchanged
}
func (c *IfBigger[E]) Check(a *Assignment[E]) bool {
	if a.Size(c.X) < c.Threshold {
		return true
	}
	for e := range a.Get(c.Y) {
		if !a.Contains(c.Z, e) {
			return false
		}
	}
	return true
}

// DynamicUnion models a driver set whose members each resolve, via Derive,
// to further ValueIDs whose contents flow into Out — for example, wiring a
// call's result to each newly discovered callee's return value as the
// callee set grows.
type DynamicUnion[E comparable] struct {
	Driver ValueID
	Derive func(E) []ValueID
	Out    ValueID

	seen  map[E]bool
	extra []ValueID
}

// NewDynamicUnion returns a DynamicUnion ready to be added to a solver.
func NewDynamicUnion[E comparable](driver ValueID, derive func(E) []ValueID, out ValueID) *DynamicUnion[E] {
	return &DynamicUnion[E]{Driver: driver, Derive: derive, Out: out, seen: map[E]bool{}}
}

func (c *DynamicUnion[E]) Inputs(*Assignment[E]) []ValueID {
	return append([]ValueID{c.Driver}, c.extra...)
}
func (c *DynamicUnion[E]) Outputs() []ValueID { return []ValueID{c.Out} }
func (c *DynamicUnion[E]) Update(a *Assignment[E]) UpdateResult {
	changed := false
	for _, id := range c.extra {
		if a.AddAll(c.Out, a.Get(id)) {
			changed = true
		}
	}
	if changed {
		return Incremented
	}
	return Unchanged
}
func (c *DynamicUnion[E]) Check(a *Assignment[E]) bool {
	for _, id := range c.extra {
		for e := range a.Get(id) {
			if !a.Contains(c.Out, e) {
				return false
			}
		}
	}
	return true
}

// UpdateDynamicDependencies derives new input ValueIDs for every driver
// element not previously seen, registers them, and reports the fresh ones so
// the solver can enqueue/resolve them.
func (c *DynamicUnion[E]) UpdateDynamicDependencies(a *Assignment[E]) []ValueID {
	var fresh []ValueID
	for e := range a.Get(c.Driver) {
		if c.seen[e] {
			continue
		}
		c.seen[e] = true
		ids := c.Derive(e)
		c.extra = append(c.extra, ids...)
		fresh = append(fresh, ids...)
	}
	return fresh
}
