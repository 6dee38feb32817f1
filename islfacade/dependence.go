package islfacade

import "github.com/parastat/parastat/affine"

// Access is one read or write access used as input to flow-dependence
// computation: which statement it belongs to, that statement's position in
// program order (lower executes first), its iteration domain, and the
// affine access function addressing the touched array.
type Access struct {
	StmtID string
	Order  int
	Domain *affine.Domain
	Fn     *affine.System
}

// Dependence pairs a source (write) access with a sink (read) access.
type Dependence struct {
	Source Access
	Sink   Access
}

// DependenceResult is the four-way classification a Presburger flow-analysis
// query returns — must, may, must-no-source, may-no-source:
//   - MustDep: for every point of Sink's domain, Source is definitely the
//     last write to reach it.
//   - MayDep: Source could be the last write for some point of Sink's
//     domain, but this engine cannot prove it always is.
//   - MustNoSource: no write in the input set can ever reach this read (a
//     definite use of an uninitialized value, reported once per Sink).
//   - MayNoSource: some reads of Sink's domain might not be covered by any
//     write, but this engine cannot prove which.
type DependenceResult struct {
	MustDep      []Dependence
	MayDep       []Dependence
	MustNoSource []Access
	MayNoSource  []Access
}

// ComputeFlowDeps computes RAW dependences from writes to reads. Ordering
// between two accesses is decided by their Order field: a write is a
// candidate source for a read only if it executes strictly earlier
// (Write.Order < Read.Order); same-Order accesses are treated as the same
// statement instance and never depend on each other.
//
// This engine proves MustDep only for the syntactically simplest and most
// common polyhedral case: a single candidate write whose access function is
// structurally identical to the read's (sameAffineShape) and whose domain is
// not a strict subset of the read's domain (so it covers every read point).
// Every other reaching write is reported as MayDep — a sound
// over-approximation, never a missed dependence.
func ComputeFlowDeps(ctx *Context, writes, reads []Access) DependenceResult {
	var result DependenceResult
	for _, read := range reads {
		var candidates []Access
		for _, w := range writes {
			if w.Order >= read.Order {
				continue // cannot be a source: does not execute strictly before the read
			}
			if !mapsMayAlias(ctx, w, read) {
				continue
			}
			candidates = append(candidates, w)
		}
		if len(candidates) == 0 {
			result.MustNoSource = append(result.MustNoSource, read)
			continue
		}
		last := candidates[len(candidates)-1]
		if len(candidates) == 1 && sameAffineShape(last.Fn.Rows()[0], read.Fn.Rows()[0]) && !isStrictSubsetDomain(last.Domain, read.Domain) {
			result.MustDep = append(result.MustDep, Dependence{Source: last, Sink: read})
			continue
		}
		for _, c := range candidates {
			result.MayDep = append(result.MayDep, Dependence{Source: c, Sink: read})
		}
		if coverageUnclear(candidates, read) {
			result.MayNoSource = append(result.MayNoSource, read)
		}
	}
	return result
}

// mapsMayAlias reports whether w's and read's access functions could touch
// the same memory location: false when their row counts differ (this engine
// has no array-name field to compare, so a mismatched shape is the only
// evidence of definite non-aliasing it can use), otherwise whatever
// Map.SameImage reports.
func mapsMayAlias(ctx *Context, w, read Access) bool {
	wRows, rRows := w.Fn.Rows(), read.Fn.Rows()
	if len(wRows) != len(rRows) {
		return false
	}
	wMap := NewMapFromAccess(ctx, w.Domain, w.Fn)
	rMap := NewMapFromAccess(ctx, read.Domain, read.Fn)
	return wMap.SameImage(rMap)
}

// isStrictSubsetDomain conservatively reports whether a is a strict subset
// of b using this engine's box-bound fast path; returns false (not provably
// a strict subset) when it cannot decide, which only weakens MustDep into
// MayDep and never the reverse.
func isStrictSubsetDomain(a, b *affine.Domain) bool {
	if a.Vector() != b.Vector() {
		return true // different vectors: cannot prove equal coverage, treat conservatively
	}
	ab, aok := extractBoxBounds(a)
	bb, bok := extractBoxBounds(b)
	if !aok || !bok {
		return false
	}
	for idx, bound := range bb {
		ob, ok := ab[idx]
		if !ok || ob.lo > bound.lo || ob.hi < bound.hi {
			return true
		}
	}
	return false
}

// coverageUnclear reports whether the union of candidates' domains might not
// cover all of read's domain, using the box-bound fast path; returns false
// (assume covered) when it cannot decide, erring toward fewer MayNoSource
// reports rather than spuriously flagging definitely-initialized reads.
func coverageUnclear(candidates []Access, read Access) bool {
	rb, ok := extractBoxBounds(read.Domain)
	if !ok {
		return true
	}
	for idx, bound := range rb {
		covered := false
		for _, c := range candidates {
			cb, ok := extractBoxBounds(c.Domain)
			if !ok {
				continue
			}
			b, ok := cb[idx]
			if ok && b.lo <= bound.lo && b.hi >= bound.hi {
				covered = true
				break
			}
		}
		if !covered {
			return true
		}
	}
	return false
}
