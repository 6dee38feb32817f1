package dvalue

// This file adds the second-order variant's SetEntry layer on top of the
// first-order tree representation in dvalue.go: every second-order value is
// a non-empty hash-consed set of first-order trees. Projection takes the
// join of per-element projections; mutation is applied per element and the
// results joined.
//
// This layer is otherwise unbounded (meeting two sets keeps every pairwise
// meet, so cardinality keeps growing), so termination needs an explicit
// widening: once a set produced by a meet or a mutation exceeds the
// Manager's configured threshold, it collapses to a singleton set holding
// its Smashed summary.

func hashSet[B any](elems map[*Data[B]]struct{}) uint64 {
	var h uint64 = 1099511628211
	for e := range elems {
		h += e.hash // order-independent combine
	}
	return h
}

// NewSet returns the canonical non-empty set-of-trees node wrapping elems.
// Panics if elems is empty: a SetEntry is defined to be non-empty.
func (m *Manager[B]) NewSet(elems map[*Data[B]]struct{}) *Data[B] {
	if len(elems) == 0 {
		panic("dvalue: NewSet requires a non-empty element set")
	}
	h := hashSet[B](elems)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cand := range m.sets[h] {
		if setEqual(cand, elems) {
			return cand
		}
	}
	cp := make(map[*Data[B]]struct{}, len(elems))
	for k := range elems {
		cp[k] = struct{}{}
	}
	d := &Data[B]{kind: kindSet, elems: cp, hash: h}
	m.sets[h] = append(m.sets[h], d)
	return d
}

func setEqual[B any](cand *Data[B], elems map[*Data[B]]struct{}) bool {
	if len(cand.elems) != len(elems) {
		return false
	}
	for k := range elems {
		if _, ok := cand.elems[k]; !ok {
			return false
		}
	}
	return true
}

// asSet normalizes a node to a singleton set, so set-aware operations can
// treat atomic/compound and set nodes uniformly.
func (m *Manager[B]) asSet(d *Data[B]) *Data[B] {
	if d.kind == kindSet {
		return d
	}
	return m.NewSet(map[*Data[B]]struct{}{d: {}})
}

func (m *Manager[B]) projectSet(d *Data[B], i Index) *Data[B] {
	s := m.asSet(d)
	var joined *Data[B]
	for e := range s.elems {
		p := m.Project(e, i)
		if joined == nil {
			joined = p
		} else {
			joined = m.joinFirstOrder(joined, p)
		}
	}
	return joined
}

func (m *Manager[B]) mutateSet(d *Data[B], path Path, newVal *Data[B]) *Data[B] {
	s := m.asSet(d)
	out := make(map[*Data[B]]struct{}, len(s.elems))
	for e := range s.elems {
		out[m.Mutate(e, path, newVal)] = struct{}{}
	}
	return m.maybeWiden(m.NewSet(out))
}

func (m *Manager[B]) meetSet(a, b *Data[B]) *Data[B] {
	sa, sb := m.asSet(a), m.asSet(b)
	out := make(map[*Data[B]]struct{})
	for ea := range sa.elems {
		for eb := range sb.elems {
			out[m.Meet(ea, eb)] = struct{}{}
		}
	}
	return m.maybeWiden(m.NewSet(out))
}

// joinFirstOrder joins two first-order (or atomic) values pointwise,
// treating a missing index on either side as bottom (dual of Meet's
// "missing = bottom"): the union of index sets is kept, each present on
// both sides meets are actually unioned as joins here.
func (m *Manager[B]) joinFirstOrder(a, b *Data[B]) *Data[B] {
	if a == b {
		return a
	}
	if a.kind == kindAtomic && b.kind == kindAtomic {
		v := a.base
		m.ops.Join(&v, b.base)
		return m.Atomic(v)
	}
	if a.kind == kindCompound && b.kind == kindCompound {
		merged := make(map[Index]*Data[B])
		for idx, av := range a.children {
			merged[idx] = av
		}
		for idx, bv := range b.children {
			if av, ok := merged[idx]; ok {
				merged[idx] = m.joinFirstOrder(av, bv)
			} else {
				merged[idx] = bv
			}
		}
		return m.Compound(a.indexTy, merged)
	}
	return a
}

// maybeWiden collapses d to its Smashed-equivalent singleton set once its
// cardinality exceeds the Manager's configured widening threshold.
func (m *Manager[B]) maybeWiden(d *Data[B]) *Data[B] {
	if m.setWideningThreshold <= 0 || d.kind != kindSet || len(d.elems) <= m.setWideningThreshold {
		return d
	}
	summary := m.Smash(d, m.ops.Join) // widening must over-approximate, so it joins rather than meets
	return m.NewSet(map[*Data[B]]struct{}{m.Atomic(summary): {}})
}
