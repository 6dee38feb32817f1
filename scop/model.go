package scop

import (
	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/parastat/parastat/affine"
	"github.com/parastat/parastat/ir"
)

// AccessKind classifies an AccessInfo.
type AccessKind int

const (
	AccessUse AccessKind = iota
	AccessDef
	AccessUnknown
)

func (k AccessKind) String() string {
	switch k {
	case AccessDef:
		return "def"
	case AccessUnknown:
		return "unknown"
	default:
		return "use"
	}
}

// ReferenceKind tags which memory object an AccessInfo addresses. Kept as a
// plain string (rather than importing cba's richer reference-kind
// vocabulary) so scop has no dependency on the analysis layer that sits on
// top of it — cba depends on scop, not the reverse.
type ReferenceKind string

// AccessInfo is (IR address of the access expression, access kind, reference
// kind, affine access-system, optional per-access domain).
type AccessInfo struct {
	Addr    ir.Addr
	Kind    AccessKind
	RefKind ReferenceKind
	Access  *affine.System
	// Domain restricts this access's iteration points beyond its owning
	// Stmt's own domain; nil means "inherits the Stmt's domain unchanged".
	Domain *affine.Domain
}

// Stmt is (unique integer id, IR address of the statement, iteration domain,
// schedule affine-system, access list).
type Stmt struct {
	ID       int
	Addr     ir.Addr
	Domain   *affine.Domain
	Schedule *affine.System
	Accesses []AccessInfo
}

// ScheduleDim returns the number of rows in this statement's own scattering
// (its observable schedule dimension).
func (s *Stmt) ScheduleDim() int { return s.Schedule.Dim() }

// Scop is (iteration vector, ordered list of Stmt, schedule dimension): the
// maximal enclosing region of affine code. Statements are held
// in an ordered arraylist rather than a bare slice so the "re-base onto a
// shared vector as each statement is added" construction-time discipline is
// explicit API, mirroring lvlath's builder.go incremental-assembly idiom.
type Scop struct {
	vector      *affine.IterVector
	stmts       *arraylist.List
	scheduleDim int
	root        ir.Addr
}

// New returns an empty Scop over v, rooted at the IR address it was
// extracted from.
func New(v *affine.IterVector, root ir.Addr) *Scop {
	return &Scop{vector: v, stmts: arraylist.New(), root: root}
}

// Vector returns the Scop's shared iteration vector.
func (s *Scop) Vector() *affine.IterVector { return s.vector }

// Root returns the IR address of the maximal enclosing region this Scop was
// extracted from.
func (s *Scop) Root() ir.Addr { return s.root }

// ScheduleDim returns the Scop's overall schedule dimension: the maximum
// over its statements' own ScheduleDim.
func (s *Scop) ScheduleDim() int { return s.scheduleDim }

// AddStmt re-bases st's domain/schedule/accesses onto the Scop's shared
// vector and appends it in program order. Rebasing an address onto a vector
// missing one of its own variables is a caller bug (every Scop's vector only
// ever grows); AddStmt recovers that panic at this boundary and reports it
// as an ordinary error rather than letting it escape to its own caller.
func (s *Scop) AddStmt(st *Stmt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if herr := affine.RecoverRebaseFailure(r); herr != nil {
				err = herr
				return
			}
			panic(r)
		}
	}()
	dom := affine.Rebase(st.Domain, s.vector)
	sched := affine.RebaseSystem(st.Schedule, s.vector)
	accs := make([]AccessInfo, len(st.Accesses))
	for i, acc := range st.Accesses {
		fn := affine.RebaseSystem(acc.Access, s.vector)
		var accDom *affine.Domain
		if acc.Domain != nil {
			accDom = affine.Rebase(acc.Domain, s.vector)
		}
		accs[i] = AccessInfo{Addr: acc.Addr, Kind: acc.Kind, RefKind: acc.RefKind, Access: fn, Domain: accDom}
	}
	rebased := &Stmt{ID: st.ID, Addr: st.Addr, Domain: dom, Schedule: sched, Accesses: accs}
	s.stmts.Add(rebased)
	if sched.Dim() > s.scheduleDim {
		s.scheduleDim = sched.Dim()
	}
	return nil
}

// Stmts returns the Scop's statements in program order, zero-padding each
// one's own schedule up to the Scop's overall schedule dimension where
// necessary.
func (s *Scop) Stmts() []*Stmt {
	out := make([]*Stmt, s.stmts.Size())
	s.stmts.Each(func(i int, v interface{}) {
		st := v.(*Stmt)
		if st.Schedule.Dim() < s.scheduleDim {
			padded := *st
			padded.Schedule = st.Schedule.ZeroPad(s.scheduleDim - st.Schedule.Dim())
			out[i] = &padded
			return
		}
		out[i] = st
	})
	return out
}

// rebuild replaces s's statement list wholesale, recomputing schedule
// dimension, used by the transform package after rewriting schedules or
// domains in place (interchange, strip-mining, tiling, fusion).
func (s *Scop) rebuild(stmts []*Stmt) {
	s.stmts = arraylist.New()
	s.scheduleDim = 0
	for _, st := range stmts {
		s.stmts.Add(st)
		if st.Schedule.Dim() > s.scheduleDim {
			s.scheduleDim = st.Schedule.Dim()
		}
	}
}

// setVector updates the iteration vector a Scop is defined over, used by
// strip-mining/tiling after appending a new iterator to the shared vector.
func (s *Scop) setVector(v *affine.IterVector) { s.vector = v }
