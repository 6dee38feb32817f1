package dvalue

import "fmt"

// GlobalContext is the sentinel context shared by every global and
// "unknown external" location. The concrete context representation (call-
// string depth, thread context, ...) is supplied by the CBA framework
// (for example cba.Insensitive or cba.CallString); dvalue only requires any
// context type to be comparable.
type GlobalContext struct{}

// Location is a memory location: the pair (creation-site address, context).
type Location[A comparable, C comparable] struct {
	Site A
	Ctx  C
}

func (l Location[A, C]) String() string { return fmt.Sprintf("loc(%v,%v)", l.Site, l.Ctx) }

// Ref is a reference value: a location plus a data-path into it.
type Ref[A comparable, C comparable] struct {
	Loc  Location[A, C]
	Path Path
}

// Aliases reports whether r and other may alias: their locations are equal
// and their paths overlap (one is a prefix of the other).
func (r Ref[A, C]) Aliases(other Ref[A, C]) bool {
	if r.Loc != other.Loc {
		return false
	}
	return isPrefix(r.Path, other.Path) || isPrefix(other.Path, r.Path)
}

func isPrefix(p, of Path) bool {
	if len(p) > len(of) {
		return false
	}
	for i := range p {
		if p[i] != of[i] {
			return false
		}
	}
	return true
}

// Narrow appends path q to r's path (narrow(ref, path)).
func (r Ref[A, C]) Narrow(q Path) Ref[A, C] {
	out := r
	out.Path = append(append(Path{}, r.Path...), q...)
	return out
}

// Expand prepends path q to r's path (expand(ref, path), symmetric to Narrow).
func (r Ref[A, C]) Expand(q Path) Ref[A, C] {
	out := r
	out.Path = append(append(Path{}, q...), r.Path...)
	return out
}
