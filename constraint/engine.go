package constraint

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/willf/bitset"
)

// worklist is a deduplicated queue of ValueIDs drained in ascending order.
// The converged Assignment does not depend on processing order, but a fixed
// order makes the solver's own tests reproducible. Membership is tracked by
// a bitset rather than a map[ValueID]bool: ValueIDs are dense, small,
// non-negative integers handed out by a Pool counter, exactly the shape a
// bitset indexes for free instead of hashing.
type worklist struct {
	set    *treeset.Set
	queued *bitset.BitSet
}

func newWorklist() *worklist {
	return &worklist{set: treeset.NewWith(utils.IntComparator), queued: bitset.New(64)}
}

func (w *worklist) push(v ValueID) {
	if w.queued.Test(uint(v)) {
		return
	}
	w.queued.Set(uint(v))
	w.set.Add(int(v))
}

func (w *worklist) pushAll(vs []ValueID) {
	for _, v := range vs {
		w.push(v)
	}
}

func (w *worklist) pop() (ValueID, bool) {
	if w.set.Empty() {
		return 0, false
	}
	it := w.set.Iterator()
	it.Next()
	v := it.Value().(int)
	w.set.Remove(v)
	w.queued.Clear(uint(v))
	return ValueID(v), true
}

// engine is the shared machinery behind Solve (eager) and SolveLazy
// (demand-driven): a growable constraint set, a reverse input→constraint
// listener index rebuilt as each constraint's Inputs are (re-)evaluated, and
// an optional Resolver used only by the lazy variant.
type engine[E comparable] struct {
	a          *Assignment[E]
	cs         []Constraint[E]
	lastInputs [][]ValueID
	listeners  map[ValueID]map[int]bool
	wl         *worklist
	resolver   Resolver[E]
	resolved   map[ValueID]bool
	onStep     func(ValueID)
}

func newEngine[E comparable](a *Assignment[E], resolver Resolver[E], onStep func(ValueID)) *engine[E] {
	return &engine[E]{
		a:         a,
		listeners: map[ValueID]map[int]bool{},
		wl:        newWorklist(),
		resolver:  resolver,
		resolved:  map[ValueID]bool{},
		onStep:    onStep,
	}
}

func (e *engine[E]) addConstraint(c Constraint[E]) int {
	idx := len(e.cs)
	e.cs = append(e.cs, c)
	e.lastInputs = append(e.lastInputs, nil)
	// Every constraint is applied once as it is added, so one with no inputs
	// (Elem) takes effect; after that it re-runs only when an input is popped.
	c.Update(e.a)
	return idx
}

// ensureResolved guarantees every constraint defining v has been merged into
// e.cs, recursively resolving through the Resolver. A no-op when e.resolver
// is nil (the eager solver's
// constraint set is fixed up front) or v is already resolved — resolved is
// marked before the recursive merge so a cyclic resolver graph terminates
// instead of looping forever.
func (e *engine[E]) ensureResolved(v ValueID) {
	if e.resolver == nil || e.resolved[v] {
		return
	}
	e.resolved[v] = true
	for _, c := range e.resolver([]ValueID{v}) {
		idx := e.addConstraint(c)
		for _, out := range c.Outputs() {
			e.resolved[out] = true
		}
		e.wl.pushAll(c.Outputs())
		e.register(idx, c.Inputs(e.a))
	}
}

// register refreshes the listener index for constraint idx to the given
// input set, resolving (lazy mode) any input not yet defined.
func (e *engine[E]) register(idx int, ids []ValueID) {
	for _, old := range e.lastInputs[idx] {
		delete(e.listeners[old], idx)
	}
	e.lastInputs[idx] = ids
	for _, id := range ids {
		e.ensureResolved(id)
		if e.listeners[id] == nil {
			e.listeners[id] = map[int]bool{}
		}
		e.listeners[id][idx] = true
	}
}

// run drains the worklist: pop a ValueID, re-run every constraint currently
// registered as depending on it, and re-enqueue outputs that changed.
func (e *engine[E]) run(seed []ValueID) {
	for i, c := range e.cs {
		e.register(i, c.Inputs(e.a))
	}
	e.wl.pushAll(seed)

	for {
		v, ok := e.wl.pop()
		if !ok {
			break
		}
		if e.onStep != nil {
			e.onStep(v)
		}
		for idx := range e.listeners[v] {
			c := e.cs[idx]
			res := c.Update(e.a)
			inputs := c.Inputs(e.a)
			if dc, ok := c.(DynamicConstraint[E]); ok {
				inputs = append(append([]ValueID{}, inputs...), dc.UpdateDynamicDependencies(e.a)...)
			}
			e.register(idx, inputs)
			if res != Unchanged {
				e.wl.pushAll(c.Outputs())
			}
		}
	}
}
