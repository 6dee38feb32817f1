// Package constraint implements an inequality-style set-constraint graph and
// its two solvers: the fixpoint machinery the cba package's analysis
// generators emit constraints into.
//
// Every ValueID in one Assignment names a slot holding a set of elements of
// one caller-chosen type E (a reference, a data-path, a thread body, ...);
// the solver never interprets E itself, only the set-inclusion relations
// between slots, matching a classical inclusion-based (Andersen-style)
// constraint system.
package constraint
