package constraint

// Solve is the eager fixpoint: given a fixed constraint set and an initial
// Assignment, seeds the worklist with every constraint's outputs and
// iterates until it drains, then returns the converged Assignment.
//
// Correctness conditions the caller must guarantee: every constraint's
// Update is monotone and idempotent at a fixpoint, and either every lattice
// involved has finite height or the set of reachable assignments is finite.
// Under those conditions Solve is guaranteed to terminate.
func Solve[E comparable](cs []Constraint[E], init *Assignment[E], opts ...SolverOption) (*Assignment[E], error) {
	o := defaultSolverOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	a := init
	if a == nil {
		a = NewAssignment[E]()
	}
	e := newEngine[E](a, nil, o.onStep)
	var seed []ValueID
	for _, c := range cs {
		e.addConstraint(c)
		seed = append(seed, c.Outputs()...)
	}
	e.run(seed)
	return a, nil
}

// Resolver produces, for a batch of demanded ValueIDs, the constraints that
// define them. SolveLazy calls it once per not-yet-seen ValueID,
// recursively, as constraints already merged in demand further inputs.
type Resolver[E comparable] func(ids []ValueID) []Constraint[E]

// SolveLazy is a demand-driven fixpoint: starting from an
// empty constraint set, it resolves exactly the ValueIDs in want (and,
// transitively, whatever they depend on) before delegating to the same
// worklist loop Solve uses.
//
// Termination requires the same conditions as Solve, plus: the set of
// ValueIDs the resolver can ever emit for a given input is finite.
func SolveLazy[E comparable](resolver Resolver[E], init *Assignment[E], want []ValueID, opts ...SolverOption) (*Assignment[E], error) {
	o := defaultSolverOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	a := init
	if a == nil {
		a = NewAssignment[E]()
	}
	e := newEngine[E](a, resolver, o.onStep)
	for _, v := range want {
		e.ensureResolved(v)
	}
	var seed []ValueID
	for _, c := range e.cs {
		seed = append(seed, c.Outputs()...)
	}
	e.run(seed)
	return a, nil
}
