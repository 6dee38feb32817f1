package scop

import (
	"sort"

	"github.com/parastat/parastat/affine"
	"github.com/parastat/parastat/ir"
)

// ToIR lowers s back to IR: one KindFor per
// iterator of s's vector, nested outer to inner, each bounded by the
// tightest constant box bound derivable from the union of every
// statement's domain, wrapping a compound body holding each statement's
// original IR node in schedule order. The emitted IR is run through
// ir.Check; any error message makes ToIR fail with ErrSemanticCheckFailed.
func ToIR(m *ir.Manager, s *Scop) (ir.Addr, error) {
	stmts := s.Stmts()
	if len(stmts) == 0 {
		return ir.Addr{}, ErrModelingLimitation
	}
	sorted := append([]*Stmt(nil), stmts...)
	sort.SliceStable(sorted, func(i, j int) bool { return scheduleLess(sorted[i].Schedule, sorted[j].Schedule) })

	bodyAddrs := make([]ir.Addr, len(sorted))
	for i, st := range sorted {
		bodyAddrs[i] = st.Addr
	}
	node := m.New(ir.KindCompound, "", bodyAddrs...)

	for i := s.vector.NumIterators() - 1; i >= 0; i-- {
		lo, hi, ok := boundOf(s, i)
		if !ok {
			return ir.Addr{}, ErrModelingLimitation
		}
		node = wrapFor(m, s.vector.IteratorName(i), lo, hi, node)
	}
	if ir.Check(m, node).HasErrors() {
		return ir.Addr{}, ErrSemanticCheckFailed
	}
	return node, nil
}

// scheduleLess orders two statements' schedules: rows tied to an iterator
// always tie against each other (both describe the same structural nesting
// position); rows that are pure constants compare by that constant — the
// sequential position siblings were extracted in.
func scheduleLess(a, b *affine.System) bool {
	ar, br := a.Rows(), b.Rows()
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	for i := 0; i < n; i++ {
		aIter, aC := rowKey(ar[i])
		bIter, bC := rowKey(br[i])
		if aIter != bIter {
			return !aIter
		}
		if !aIter && aC != bC {
			return aC < bC
		}
	}
	return len(ar) < len(br)
}

func rowKey(f *affine.Func) (isIter bool, constant int64) {
	for i := 0; i < f.Vector().NumIterators(); i++ {
		if f.IterCoef(i) != 0 {
			return true, 0
		}
	}
	return false, f.Constant()
}

// boundOf derives a constant [lo,hi] box bound for iterator iterIdx: each
// statement's tightest bound comes from the leaves of its domain that
// constrain the iterator directly (a single nonzero iterator coefficient per
// leaf, the shape every loop header in this package's extractor produces),
// and the result is the smallest box covering every such statement's bound.
func boundOf(s *Scop, iterIdx int) (lo, hi int64, ok bool) {
	found := false
	for _, st := range s.Stmts() {
		stLo, stHi, stFound := int64(-1<<62), int64(1<<62), false
		if st.Domain.Combiner() == nil {
			continue
		}
		leaves, okConj := affine.AsConjunctionOfLeaves(affine.Normalize(st.Domain.Combiner()))
		if !okConj {
			continue
		}
		for _, leaf := range leaves {
			if leaf.Rel != affine.LE {
				continue
			}
			nz, coef := singleNonZeroIterOf(leaf.F, iterIdx)
			if !nz {
				continue
			}
			stFound = true
			switch coef {
			case 1:
				if h := -leaf.F.Constant(); h < stHi {
					stHi = h
				}
			case -1:
				if l := leaf.F.Constant(); l > stLo {
					stLo = l
				}
			}
		}
		if !stFound {
			continue
		}
		if !found || stLo < lo {
			lo = stLo
		}
		if !found || stHi > hi {
			hi = stHi
		}
		found = true
	}
	if !found {
		return 0, 0, false
	}
	return lo, hi, true
}

// singleNonZeroIterOf reports whether f's only nonzero iterator coefficient
// is at iterIdx, and if so returns it.
func singleNonZeroIterOf(f *affine.Func, iterIdx int) (ok bool, coef int64) {
	v := f.Vector()
	found := -1
	var c int64
	for i := 0; i < v.NumIterators(); i++ {
		if fc := f.IterCoef(i); fc != 0 {
			if found != -1 {
				return false, 0
			}
			found = i
			c = fc
		}
	}
	if found != iterIdx {
		return false, 0
	}
	return true, c
}

func wrapFor(m *ir.Manager, name string, lo, hi int64, body ir.Addr) ir.Addr {
	iterVar := m.New(ir.KindVariable, name)
	loLit := m.New(ir.KindLiteral, "")
	m.Node(loLit).Const = lo
	hiLit := m.New(ir.KindLiteral, "")
	m.Node(hiLit).Const = hi + 1 // emitted as an exclusive "<" bound
	cond := m.New(ir.KindBinOp, "<", iterVar, hiLit)
	return m.New(ir.KindFor, name, cond, body, loLit)
}
