package scop

import (
	"fmt"

	"github.com/parastat/parastat/affine"
)

// Interchange swaps schedule rows i and j of every statement in s, exposing
// the loop previously at dimension j as the new outer dimension and vice
// versa.
func Interchange(s *Scop, i, j int) error {
	if i < 0 || j < 0 || i >= s.ScheduleDim() || j >= s.ScheduleDim() {
		return ErrUnknownTransform
	}
	stmts := s.Stmts()
	out := make([]*Stmt, len(stmts))
	for k, st := range stmts {
		out[k] = &Stmt{ID: st.ID, Addr: st.Addr, Domain: st.Domain, Accesses: st.Accesses, Schedule: swapRows(st.Schedule, i, j)}
	}
	s.rebuild(out)
	return nil
}

func swapRows(sys *affine.System, i, j int) *affine.System {
	rows := sys.Rows()
	out := affine.NewSystem(sys.Vector())
	for k, r := range rows {
		switch k {
		case i:
			out.Append(rows[j])
		case j:
			out.Append(rows[i])
		default:
			out.Append(r)
		}
	}
	return out
}

// StripMine splits iterator iterIdx into an outer "tile" iterator stepping
// by tile and an inner iterator ranging over [0,tile) within each tile:
// append a new iterator ι, constrain ι ≤ original ≤ ι+tile-1 and ι ≡ 0
// (mod tile), and duplicate the schedule row carrying the original iterator
// so the new ι-row precedes it.
func StripMine(s *Scop, iterIdx int, tile int64) (err error) {
	if iterIdx < 0 || iterIdx >= s.vector.NumIterators() || tile <= 0 {
		return ErrUnknownTransform
	}
	defer func() {
		if r := recover(); r != nil {
			if herr := affine.RecoverRebaseFailure(r); herr != nil {
				err = herr
				return
			}
			panic(r)
		}
	}()
	newIV := s.vector.Clone()
	outerIdx := newIV.AddIterator(fmt.Sprintf("%s_strip", s.vector.IteratorName(iterIdx)))

	stmts := s.Stmts()
	out := make([]*Stmt, 0, len(stmts))
	for _, st := range stmts {
		accs := rebaseAccesses(st.Accesses, newIV)

		var newDomain *affine.Domain
		if st.Domain.IsEmpty() {
			newDomain = affine.Empty(newIV)
		} else {
			dom := affine.Rebase(st.Domain, newIV)
			outerF := unitFunc(newIV, outerIdx)
			origF := unitFunc(newIV, iterIdx)
			lowLeaf := affine.Leaf(affine.Constraint{F: subFunc(outerF, origF), Rel: affine.LE})               // ι-orig<=0
			hiLeaf := affine.Leaf(affine.Constraint{F: addConst(subFunc(origF, outerF), -(tile - 1)), Rel: affine.LE}) // orig-ι-(T-1)<=0
			divLeaf := affine.Div(affine.DivConstraint{F: outerF, Mod: tile})
			if dom.IsUniverse() {
				newDomain = affine.NewDomain(newIV, affine.And(lowLeaf, hiLeaf, divLeaf))
			} else {
				newDomain = affine.NewDomain(newIV, affine.And(dom.Combiner(), lowLeaf, hiLeaf, divLeaf))
			}
		}

		sched := affine.RebaseSystem(st.Schedule, newIV)
		out = append(out, &Stmt{
			ID:       st.ID,
			Addr:     st.Addr,
			Domain:   newDomain,
			Schedule: stripMineSchedule(newIV, sched, iterIdx, outerIdx),
			Accesses: accs,
		})
	}
	s.setVector(newIV)
	s.rebuild(out)
	return nil
}

func rebaseAccesses(accs []AccessInfo, newIV *affine.IterVector) []AccessInfo {
	out := make([]AccessInfo, len(accs))
	for i, acc := range accs {
		fn := affine.RebaseSystem(acc.Access, newIV)
		var dom *affine.Domain
		if acc.Domain != nil {
			dom = affine.Rebase(acc.Domain, newIV)
		}
		out[i] = AccessInfo{Addr: acc.Addr, Kind: acc.Kind, RefKind: acc.RefKind, Access: fn, Domain: dom}
	}
	return out
}

func stripMineSchedule(iv *affine.IterVector, sched *affine.System, iterIdx, outerIdx int) *affine.System {
	out := affine.NewSystem(iv)
	for _, r := range sched.Rows() {
		if r.IterCoef(iterIdx) != 0 {
			out.Append(unitFunc(iv, outerIdx))
		}
		out.Append(r)
	}
	return out
}

// Tile strip-mines every iterator in iters by its matching tile size, then
// moves each newly introduced outer iterator's schedule row to just before
// iters[0]'s row, assembling an outer tile band followed by an inner point
// band.
func Tile(s *Scop, iters []int, tiles []int64) error {
	if len(iters) != len(tiles) || len(iters) == 0 {
		return ErrUnknownTransform
	}
	outerIdxs := make([]int, len(iters))
	for k, it := range iters {
		if err := StripMine(s, it, tiles[k]); err != nil {
			return err
		}
		outerIdxs[k] = s.vector.NumIterators() - 1
	}
	for k := len(outerIdxs) - 1; k >= 0; k-- {
		moveIteratorRowBefore(s, outerIdxs[k], iters[0])
	}
	return nil
}

// moveIteratorRowBefore reorders every statement's schedule so the row tied
// to iterator mover appears immediately before the row tied to iterator
// pivot. A no-op for a statement where mover's row already precedes pivot's,
// or where either iterator's nest does not reach that statement.
func moveIteratorRowBefore(s *Scop, mover, pivot int) {
	stmts := s.Stmts()
	out := make([]*Stmt, len(stmts))
	for i, st := range stmts {
		out[i] = &Stmt{ID: st.ID, Addr: st.Addr, Domain: st.Domain, Accesses: st.Accesses, Schedule: reorderSchedule(st.Schedule, mover, pivot)}
	}
	s.rebuild(out)
}

func reorderSchedule(sched *affine.System, mover, pivot int) *affine.System {
	rows := sched.Rows()
	moverIdx, pivotIdx := -1, -1
	for i, r := range rows {
		if r.IterCoef(mover) != 0 {
			moverIdx = i
		}
		if r.IterCoef(pivot) != 0 {
			pivotIdx = i
		}
	}
	if moverIdx < 0 || pivotIdx < 0 || moverIdx < pivotIdx {
		return sched
	}
	out := affine.NewSystem(sched.Vector())
	moverRow := rows[moverIdx]
	for i, r := range rows {
		if i == moverIdx {
			continue
		}
		if i == pivotIdx {
			out.Append(moverRow)
		}
		out.Append(r)
	}
	return out
}

// Fuse merges two Scops sharing an outer iterator name onto one Scop,
// aligning that iterator so their schedules line up on a common band and
// leaving every statement's own domain untouched — each is still
// constrained to its original loop's bounds. Both Scops must name their
// outermost iterator identically; this is a deliberate narrowing of the
// general "align on any common iterator" capability to the common case
// where the two loops were written with the same induction-variable name
// (see DESIGN.md).
func Fuse(s1, s2 *Scop) (*Scop, error) {
	if s1.vector.NumIterators() == 0 || s2.vector.NumIterators() == 0 {
		return nil, ErrUnknownTransform
	}
	if s1.vector.IteratorName(0) != s2.vector.IteratorName(0) {
		return nil, ErrUnknownTransform
	}
	merged := affine.Merge(s1.vector, s2.vector)
	out := New(merged, s1.Root())

	maxID := 0
	for _, st := range s1.Stmts() {
		if st.ID > maxID {
			maxID = st.ID
		}
		if err := out.AddStmt(st); err != nil {
			return nil, err
		}
	}
	for _, st := range s2.Stmts() {
		maxID++
		renumbered := &Stmt{ID: maxID, Addr: st.Addr, Domain: st.Domain, Schedule: st.Schedule, Accesses: st.Accesses}
		if err := out.AddStmt(renumbered); err != nil {
			return nil, err
		}
	}
	return out, nil
}
