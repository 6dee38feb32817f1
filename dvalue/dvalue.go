// Package dvalue lifts a base lattice B that abstracts atomic values into a
// lattice over structured (composite) IR data: struct, union, tuple, vector,
// array.
//
// Three variants share one interface:
//   - Smashed: the whole composite collapses to one B value.
//   - First-order tree: internal nodes are Index→Data mappings, leaves are B.
//   - Second-order set-of-trees: a set of first-order trees, preserving
//     correlations between fields.
//
// A Manager stores the Variant it was built with (see Manager.Variant), but
// its constructors do not consult it: Compound always builds a first-order
// node, set nodes come only from NewSet, and no constructor collapses a
// composite to a single B value. Smash computes that single-value summary
// for any value.
//
// Every Data value returned by a Manager is hash-consed: structurally equal
// values share identity, so callers may compare with ==.
package dvalue

import (
	"fmt"
	"sync"

	"github.com/willf/bitset"
)

// IndexKind distinguishes the index spaces a composite may be keyed by.
type IndexKind int

const (
	IndexField IndexKind = iota // struct/union member, keyed by name
	IndexTuple                  // tuple element, keyed by position
	IndexArray                  // vector/array element, keyed by position
)

// Index addresses one child slot of a compound value.
type Index struct {
	Kind IndexKind
	Name string // valid when Kind == IndexField
	Pos  int    // valid when Kind == IndexTuple or IndexArray
}

// Path is a data-path: a sequence of Index steps from a root. The empty Path
// denotes the root itself.
type Path []Index

// Root is the distinguished empty path.
func Root() Path { return nil }

// Append returns a new path with step appended (path ++ step).
func (p Path) Append(step Index) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = step
	return out
}

// Prepend returns a new path with step prepended (step ++ path).
func (p Path) Prepend(step Index) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, step)
	out = append(out, p...)
	return out
}

// Variant selects how a Manager represents composites.
type Variant int

const (
	Smashed Variant = iota
	FirstOrder
	SecondOrder
)

// valueKind tags what a node actually stores.
type valueKind int

const (
	kindAtomic valueKind = iota
	kindCompound
	kindSet // second-order only: a non-empty set of first-order trees
)

// Data is a hash-consed structured abstract value. The zero Data is not
// valid; obtain values only from a Manager.
type Data[B any] struct {
	kind     valueKind
	base     B
	indexTy  IndexKind
	children map[Index]*Data[B]
	elems    map[*Data[B]]struct{} // kindSet only
	hash     uint64

	// arrayPresence caches which positions are occupied for an
	// IndexArray-keyed compound, so a caller probing a run of positions
	// (Project over a dense vector/array) can test occupancy without
	// hashing an Index key into the children map first.
	arrayPresence *bitset.BitSet
}

// Base returns the wrapped base value and true, for an atomic node.
func (d *Data[B]) Base() (B, bool) {
	if d == nil || d.kind != kindAtomic {
		var zero B
		return zero, false
	}
	return d.base, true
}

// IsCompound reports whether d is a compound (Index→Data) node.
func (d *Data[B]) IsCompound() bool { return d != nil && d.kind == kindCompound }

// IsSet reports whether d is a second-order set-of-trees node.
func (d *Data[B]) IsSet() bool { return d != nil && d.kind == kindSet }

// Hash returns the precomputed structural hash of d.
func (d *Data[B]) Hash() uint64 { return d.hash }

// BaseOps are the operations a Manager needs on the lifted base lattice B:
// a hash function (for consing) and a meet-assign (for pointwise meet).
type BaseOps[B any] struct {
	Hash  func(B) uint64
	Meet  func(a *B, b B) bool
	Join  func(a *B, b B) bool
	Equal func(a, b B) bool
}

// Manager owns every Data[B] node it has ever constructed and is the sole
// path to allocation. It is scoped to one analysis
// instance and is not safe to share across instances that disagree on
// BaseOps or Variant.
type Manager[B any] struct {
	variant Variant
	ops     BaseOps[B]

	mu        sync.Mutex
	atoms     map[uint64][]*Data[B]
	compounds map[uint64][]*Data[B]
	sets      map[uint64][]*Data[B]
	empties   map[IndexKind]*Data[B]

	setWideningThreshold int // 0 = unbounded
}

// Option configures a Manager at construction time.
type Option func(*managerConfig)

type managerConfig struct {
	widening int
}

// WithSetWidening bounds the cardinality of a second-order SetEntry: once a
// set meet or mutation produces more than n elements, the result collapses
// to a singleton set holding its Smash summary instead, trading
// field-correlation precision for guaranteed termination.
func WithSetWidening(n int) Option {
	return func(c *managerConfig) { c.widening = n }
}

// NewManager returns a Manager over base lattice ops. variant is stored and
// reported by Variant; it does not change how values are built.
func NewManager[B any](variant Variant, ops BaseOps[B], opts ...Option) *Manager[B] {
	cfg := managerConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	return &Manager[B]{
		variant:              variant,
		ops:                  ops,
		atoms:                make(map[uint64][]*Data[B]),
		compounds:            make(map[uint64][]*Data[B]),
		sets:                 make(map[uint64][]*Data[B]),
		empties:              make(map[IndexKind]*Data[B]),
		setWideningThreshold: cfg.widening,
	}
}

// Atomic returns the canonical node wrapping base value v, memoized by
// hash(v).
func (m *Manager[B]) Atomic(v B) *Data[B] {
	h := m.ops.Hash(v)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cand := range m.atoms[h] {
		if m.ops.Equal(cand.base, v) {
			return cand
		}
	}
	d := &Data[B]{kind: kindAtomic, base: v, hash: h}
	m.atoms[h] = append(m.atoms[h], d)
	return d
}

func hashChildren[B any](kind IndexKind, children map[Index]*Data[B]) uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	h ^= uint64(kind) * 31
	for idx, v := range children {
		var step uint64 = uint64(idx.Kind)*1000003 + uint64(idx.Pos)
		for _, c := range idx.Name {
			step = step*131 + uint64(c)
		}
		step ^= v.hash
		h += step // order-independent combine: addition over the index set
	}
	return h
}

// CreateEmpty returns the canonical empty compound of the given index type,
// so a caller holding only an index-type tag can obtain a canonical empty
// instance without building a map.
func (m *Manager[B]) CreateEmpty(indexTy IndexKind) *Data[B] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.empties[indexTy]; ok {
		return e
	}
	e := &Data[B]{kind: kindCompound, indexTy: indexTy, children: map[Index]*Data[B]{}, hash: hashChildren[B](indexTy, nil)}
	m.empties[indexTy] = e
	return e
}

// Compound returns the canonical compound node for the given Index→Data
// mapping, memoized by the combined hash of its entries.
func (m *Manager[B]) Compound(indexTy IndexKind, children map[Index]*Data[B]) *Data[B] {
	if len(children) == 0 {
		return m.CreateEmpty(indexTy)
	}
	h := hashChildren[B](indexTy, children)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cand := range m.compounds[h] {
		if compoundEqual(cand, indexTy, children) {
			return cand
		}
	}
	cp := make(map[Index]*Data[B], len(children))
	for k, v := range children {
		cp[k] = v
	}
	d := &Data[B]{kind: kindCompound, indexTy: indexTy, children: cp, hash: h, arrayPresence: arrayPresenceOf(indexTy, cp)}
	m.compounds[h] = append(m.compounds[h], d)
	return d
}

// arrayPresenceOf builds the occupied-position bitset for an IndexArray
// compound; nil for any other index kind, since Field/Tuple indices have no
// dense integer space to bit-test over.
func arrayPresenceOf[B any](indexTy IndexKind, children map[Index]*Data[B]) *bitset.BitSet {
	if indexTy != IndexArray {
		return nil
	}
	b := bitset.New(uint(len(children)))
	for idx := range children {
		b.Set(uint(idx.Pos))
	}
	return b
}

func compoundEqual[B any](cand *Data[B], indexTy IndexKind, children map[Index]*Data[B]) bool {
	if cand.indexTy != indexTy || len(cand.children) != len(children) {
		return false
	}
	for k, v := range children {
		if cand.children[k] != v {
			return false
		}
	}
	return true
}

// Project reads the sub-value at index i of a compound node. It is undefined
// (asserted) for atomic nodes.
func (m *Manager[B]) Project(d *Data[B], i Index) *Data[B] {
	if d.kind == kindSet {
		return m.projectSet(d, i)
	}
	if d.kind != kindCompound {
		panic(fmt.Sprintf("dvalue: Project called on non-compound node (kind=%d)", d.kind))
	}
	if d.indexTy == IndexArray && d.arrayPresence != nil && !d.arrayPresence.Test(uint(i.Pos)) {
		return m.CreateEmpty(d.indexTy)
	}
	if child, ok := d.children[i]; ok {
		return child
	}
	return m.CreateEmpty(d.indexTy)
}

// ProjectPath reads the sub-value addressed by a full data-path, recursing
// step by step; the root path returns d unchanged.
func (m *Manager[B]) ProjectPath(d *Data[B], path Path) *Data[B] {
	cur := d
	for _, step := range path {
		cur = m.Project(cur, step)
	}
	return cur
}

// Mutate produces a new value identical to d except at path, which becomes
// newVal. The root path replaces the entire value; a non-indexed position
// into an empty compound first creates an empty compound of the appropriate
// index type and recurses.
func (m *Manager[B]) Mutate(d *Data[B], path Path, newVal *Data[B]) *Data[B] {
	if len(path) == 0 {
		return newVal
	}
	if d.kind == kindSet {
		return m.mutateSet(d, path, newVal)
	}
	step := path[0]
	base := d
	if base == nil || base.kind != kindCompound {
		base = m.CreateEmpty(step.Kind)
	}
	child := m.Project(base, step)
	newChild := m.Mutate(child, path[1:], newVal)
	children := make(map[Index]*Data[B], len(base.children)+1)
	for k, v := range base.children {
		children[k] = v
	}
	children[step] = newChild
	return m.Compound(base.indexTy, children)
}

// Meet computes a ⊓ b. Atomic ⊓ atomic lifts the base lattice's meet;
// compound ⊓ compound is pointwise over the union of indices, missing
// entries treated as ⊥ (so the result never has an entry the narrower side
// lacked, since ⊥ ⊓ anything = ⊥ collapses that slot to the empty child).
func (m *Manager[B]) Meet(a, b *Data[B]) *Data[B] {
	if a == b {
		return a
	}
	if a.kind == kindSet || b.kind == kindSet {
		return m.meetSet(a, b)
	}
	if a.kind == kindAtomic && b.kind == kindAtomic {
		v := a.base
		m.ops.Meet(&v, b.base)
		return m.Atomic(v)
	}
	if a.kind == kindCompound && b.kind == kindCompound {
		merged := make(map[Index]*Data[B])
		for idx, av := range a.children {
			if bv, ok := b.children[idx]; ok {
				merged[idx] = m.Meet(av, bv)
			}
			// idx missing on b's side: treated as bottom -> drop the slot.
		}
		return m.Compound(a.indexTy, merged)
	}
	// Mismatched shapes (atomic vs compound): conservative bottom-of-shape.
	if a.kind == kindAtomic {
		return a
	}
	return b
}

// Smash collapses d to a single base-lattice value by joining every leaf
// reachable from it, regardless of which Variant produced d. Used by
// dvalue's own second-order widening path (maybeWiden).
func (m *Manager[B]) Smash(d *Data[B], joinAssign func(a *B, b B) bool) B {
	var acc B
	first := true
	var walk func(n *Data[B])
	walk = func(n *Data[B]) {
		switch n.kind {
		case kindAtomic:
			if first {
				acc = n.base
				first = false
			} else {
				joinAssign(&acc, n.base)
			}
		case kindCompound:
			for _, c := range n.children {
				walk(c)
			}
		case kindSet:
			for e := range n.elems {
				walk(e)
			}
		}
	}
	walk(d)
	return acc
}

// Variant reports which variant this Manager was constructed with.
func (m *Manager[B]) Variant() Variant { return m.variant }
