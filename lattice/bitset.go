package lattice

import "github.com/willf/bitset"

// NewBitsetPowerset builds the powerset lattice over a universe of n
// elements, represented with github.com/willf/bitset for compact storage and
// fast pointwise AND/OR. ⊥ is the empty set, ⊤ is the full universe; ⊑ is
// subset. This is the lattice a live-variable dataflow problem is typically
// solved over.
func NewBitsetPowerset(n uint) *Lattice[*bitset.BitSet] {
	bottom := bitset.New(n)
	top := bitset.New(n)
	for i := uint(0); i < n; i++ {
		top.Set(i)
	}
	meet := func(a **bitset.BitSet, b *bitset.BitSet) bool {
		before := (*a).Clone()
		*a = (*a).Intersection(b)
		return !before.Equal(*a)
	}
	join := func(a **bitset.BitSet, b *bitset.BitSet) bool {
		before := (*a).Clone()
		*a = (*a).Union(b)
		return !before.Equal(*a)
	}
	equal := func(a, b *bitset.BitSet) bool { return a.Equal(b) }
	return New(top, bottom, meet, join, equal)
}
