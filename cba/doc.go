// Package cba is the CBA front to the constraint solver: the per-analysis
// constraint generators (reference, data-path, thread-body) and the
// call-site manager they depend on for call resolution.
//
// A generator is a finite dispatch table, keyed by ir.Kind, that walks an IR
// subtree and emits constraint.Constraint values into a
// constraint[cba.Value[C]] set — the same eager/lazy solver in package
// constraint then fixes that set against an Assignment. Context-sensitivity
// is parametric: the Generator and Value types carry a type parameter C,
// the context representation supplied by the caller. This package ships
// two ready-made contexts, Insensitive (no context) and CallString
// (call-string-depth sensitivity); no thread context is shipped, but a
// caller may supply any comparable type.
//
// Grounded on lvlath's algorithms package (a facade composing bfs/dfs/
// dijkstra behind one surface, the shape this package's dispatch-table
// generators follow) and dtw's alignment fixpoint (the call-site manager's
// fixpoint over a recursive/mutually-recursive binding group, adapted here
// over a binding-name -> callable-address map instead of an alignment
// matrix).
package cba
