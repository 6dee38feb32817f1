package scop

import (
	"strconv"

	"github.com/parastat/parastat/affine"
	"github.com/parastat/parastat/islfacade"
)

// DepKind selects one of the four classical dependence relations.
type DepKind int

const (
	RAW DepKind = iota // write -> read
	WAR                 // read -> write
	WAW                 // write -> write
	RAR                 // read -> read
)

// ComputeDeps computes the union, over the requested kinds, of s's
// dependence relations. Each kind reuses islfacade's flow-deps
// engine with its source/sink role swapped appropriately.
func ComputeDeps(ctx *islfacade.Context, s *Scop, kinds []DepKind) islfacade.DependenceResult {
	reads, writes := accessesByKind(s)
	var merged islfacade.DependenceResult
	for _, k := range kinds {
		var res islfacade.DependenceResult
		switch k {
		case RAW:
			res = islfacade.ComputeFlowDeps(ctx, writes, reads)
		case WAR:
			res = islfacade.ComputeFlowDeps(ctx, reads, writes)
		case WAW:
			res = islfacade.ComputeFlowDeps(ctx, writes, writes)
		case RAR:
			res = islfacade.ComputeFlowDeps(ctx, reads, reads)
		}
		merged.MustDep = append(merged.MustDep, res.MustDep...)
		merged.MayDep = append(merged.MayDep, res.MayDep...)
		merged.MustNoSource = append(merged.MustNoSource, res.MustNoSource...)
		merged.MayNoSource = append(merged.MayNoSource, res.MayNoSource...)
	}
	return merged
}

func accessesByKind(s *Scop) (reads, writes []islfacade.Access) {
	order := 0
	for _, st := range s.Stmts() {
		for _, acc := range st.Accesses {
			dom := acc.Domain
			if dom == nil {
				dom = st.Domain
			}
			a := islfacade.Access{StmtID: strconv.Itoa(st.ID), Order: order, Domain: dom, Fn: acc.Access}
			if acc.Kind == AccessDef {
				writes = append(writes, a)
			} else {
				reads = append(reads, a)
			}
		}
		order++
	}
	return reads, writes
}

// IsParallel reports whether s's outermost loop can run its iterations in
// any order: true when no dependence has a non-zero component in the
// outermost schedule dimension. This engine tests it directly at
// the statement level: for every pair of statements with a possibly
// conflicting access (one a write), a dependence is outer-loop-carried
// whenever either statement's outermost schedule row is tied to s's first
// iterator — conservative (may report false where a finer per-iteration
// analysis would say true), never the reverse.
func IsParallel(ctx *islfacade.Context, s *Scop) bool {
	stmts := s.Stmts()
	for i, a := range stmts {
		for j, b := range stmts {
			if i == j {
				continue
			}
			if !accessesMayConflict(ctx, a, b) {
				continue
			}
			if outerCarried(a.Schedule) || outerCarried(b.Schedule) {
				return false
			}
		}
	}
	return true
}

// outerCarried reports whether sys ties its statement to iterator 0 (the
// outermost loop nest) at all. The schedule's physical row 0 is never that
// iterator's own row — walkSeq always prepends a sibling sequence-position
// counter ahead of each nesting level's iterator row, even at the outermost
// level — so this scans every row rather than assuming row 0 is it.
func outerCarried(sys *affine.System) bool {
	for _, row := range sys.Rows() {
		if row.IterCoef(0) != 0 {
			return true
		}
	}
	return false
}

// accessesMayConflict reports whether any access of a could alias any
// access of b, requiring at least one of the pair to be a write.
func accessesMayConflict(ctx *islfacade.Context, a, b *Stmt) bool {
	for _, ax := range a.Accesses {
		for _, bx := range b.Accesses {
			if ax.Kind != AccessDef && bx.Kind != AccessDef {
				continue
			}
			adom := ax.Domain
			if adom == nil {
				adom = a.Domain
			}
			bdom := bx.Domain
			if bdom == nil {
				bdom = b.Domain
			}
			am := islfacade.NewMapFromAccess(ctx, adom, ax.Access)
			bm := islfacade.NewMapFromAccess(ctx, bdom, bx.Access)
			if am.SameImage(bm) {
				return true
			}
		}
	}
	return false
}
