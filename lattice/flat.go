package lattice

// Flat builds the flat lattice over a comparable base type: ⊥ below every
// concrete value, ⊤ above every concrete value, concrete values pairwise
// incomparable. This is the textbook base lattice B that dvalue lifts into
// structured values.
type flatValue[V comparable] struct {
	isTop    bool
	isBottom bool
	value    V
	has      bool
}

// FlatElem is one element of a Flat lattice: either ⊤, ⊥, or a concrete V.
type FlatElem[V comparable] struct{ inner flatValue[V] }

// FlatTop returns the top element.
func FlatTop[V comparable]() FlatElem[V] { return FlatElem[V]{flatValue[V]{isTop: true}} }

// FlatBottom returns the bottom element.
func FlatBottom[V comparable]() FlatElem[V] { return FlatElem[V]{flatValue[V]{isBottom: true}} }

// FlatValue wraps a concrete base value.
func FlatValue[V comparable](v V) FlatElem[V] { return FlatElem[V]{flatValue[V]{value: v, has: true}} }

// Get returns the wrapped concrete value and whether one is present (false
// for ⊤ and ⊥).
func (e FlatElem[V]) Get() (V, bool) { return e.inner.value, e.inner.has }

func flatEqual[V comparable](a, b FlatElem[V]) bool {
	if a.inner.isTop != b.inner.isTop || a.inner.isBottom != b.inner.isBottom {
		return false
	}
	if a.inner.has != b.inner.has {
		return false
	}
	if a.inner.has {
		return a.inner.value == b.inner.value
	}
	return true
}

// NewFlat builds the Flat[V] lattice described above.
func NewFlat[V comparable]() *Lattice[FlatElem[V]] {
	top, bottom := FlatTop[V](), FlatBottom[V]()
	meet := func(a *FlatElem[V], b FlatElem[V]) bool {
		if flatEqual(*a, b) {
			return false
		}
		// two distinct concrete values meet to bottom.
		changed := !flatEqual(*a, bottom)
		*a = bottom
		return changed
	}
	join := func(a *FlatElem[V], b FlatElem[V]) bool {
		if flatEqual(*a, b) {
			return false
		}
		changed := !flatEqual(*a, top)
		*a = top
		return changed
	}
	return New(top, bottom, meet, join, flatEqual[V])
}
