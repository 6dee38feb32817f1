// Package islfacade is a typed wrapper over an external Presburger-set
// library: sets, maps, and piecewise quasi-polynomials, each an opaque
// handle owned by exactly one Context.
//
// No Presburger/ISL binding exists anywhere in the retrieved example corpus
// (see DESIGN.md), so this package implements the facade over a
// self-contained exact-integer engine restricted to box-and-affine
// constraint domains — sufficient for the dependence and cardinality
// queries the scop package needs, and conservative (reporting
// ErrUnsupportedSet as a modeling limitation) outside that subset.
package islfacade
