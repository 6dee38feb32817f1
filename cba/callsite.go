package cba

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/parastat/parastat/ir"
)

// addrComparator orders ir.Addr values by their string form, giving every
// set below a deterministic iteration order. The call-site manager has no
// ordering requirement of its own, but tests asserting caller/callee sets
// want a reproducible order instead of Go's randomized map iteration, the
// same reason scop reaches for an ordered container.
func addrComparator(a, b interface{}) int {
	sa, sb := a.(ir.Addr).String(), b.(ir.Addr).String()
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func newAddrSet() *treeset.Set { return treeset.NewWith(addrComparator) }

func addrSetKeys(s *treeset.Set) []ir.Addr {
	if s == nil {
		return nil
	}
	vals := s.Values()
	out := make([]ir.Addr, len(vals))
	for i, v := range vals {
		out[i] = v.(ir.Addr)
	}
	return out
}

// Callable is one callable the call-site manager can resolve a call to: a
// name, the address of the function-literal expression that introduces it
// (Kind == ir.KindLiteral, Symbol == Name, per this module's IR convention),
// and the address of its body's entry statement.
type Callable struct {
	Name  string
	Addr  ir.Addr // the defining literal
	Entry ir.Addr // the body to analyze/emit a CFG for
}

// ExternalCallee is the sentinel callable every open call's resolved set is
// unioned with: an open call resolves to every callable registered with the
// manager, plus this sentinel; no escape analysis narrows that set.
var ExternalCallee = Callable{Name: "<external>"}

// Manager is the call-site manager pre-pass: for every call
// site it enumerates possible callees, and conversely for every callable the
// possible call sites. One Manager is scoped to one program (or translation
// unit); it owns its binding tables exclusively, mirroring every other
// owning-manager type in this module.
type Manager struct {
	m *ir.Manager

	byName  map[string]Callable
	sites   []callSite
	bindRHS map[string]ir.Addr // var name -> its most recent bind's RHS address

	bindings map[string]*treeset.Set // var name -> set of ir.Addr callable.Entry, post-fixpoint
	callees  map[ir.Addr]*treeset.Set // call-site addr -> set of callable.Entry (+ ExternalCallee.Entry)
	callers  map[ir.Addr]*treeset.Set // callable.Entry -> set of call-site addrs
	resolved bool
}

type callSite struct {
	Addr   ir.Addr // the ir.KindCall node
	Callee ir.Addr // its callee-expression operand
}

// NewManager returns an empty Manager over m.
func NewManager(m *ir.Manager) *Manager {
	return &Manager{
		m:        m,
		byName:   map[string]Callable{},
		bindRHS:  map[string]ir.Addr{},
		bindings: map[string]*treeset.Set{},
		callees:  map[ir.Addr]*treeset.Set{},
		callers:  map[ir.Addr]*treeset.Set{},
	}
}

// Register declares a callable up front, so its own body can be Scanned and
// its literal recognized when referenced from elsewhere.
func (mgr *Manager) Register(c Callable) {
	mgr.byName[c.Name] = c
	mgr.resolved = false
}

// Scan walks root (typically a whole program or one callable's body) and
// records every ir.KindBind (a binding-group edge) and ir.KindCall (a call
// site) it finds. Scan may be called once per callable body plus once for
// the program's top level; Resolve then runs a single fixpoint over
// everything Scanned so far, resolving recursive and mutually recursive
// bindings over the binding group.
func (mgr *Manager) Scan(root ir.Addr) {
	ir.Walk(mgr.m, root, ir.Visitor{
		Rules: map[ir.Kind]func(*ir.Manager, *ir.Node){
			ir.KindBind: func(_ *ir.Manager, n *ir.Node) {
				if len(n.Operands) == 0 {
					return
				}
				mgr.bindRHS[n.Symbol] = n.Operands[0]
			},
			ir.KindCall: func(_ *ir.Manager, n *ir.Node) {
				if len(n.Operands) == 0 {
					return
				}
				mgr.sites = append(mgr.sites, callSite{Addr: n.Addr, Callee: n.Operands[0]})
			},
		},
		Default: func(*ir.Manager, *ir.Node) {},
	})
	mgr.resolved = false
}

// Resolve runs the binding-group fixpoint and populates the call-site <->
// callee indexes. Safe to call again after further Register/Scan calls; it
// always recomputes from scratch over everything seen so far.
func (mgr *Manager) Resolve() {
	mgr.bindings = map[string]*treeset.Set{}
	mgr.callees = map[ir.Addr]*treeset.Set{}
	mgr.callers = map[ir.Addr]*treeset.Set{}

	// Fixpoint over the binding group: a name bound directly to a callable's
	// own literal denotes that callable; a name bound to another variable
	// denotes whatever that variable currently denotes. Recursive and
	// mutually-recursive bindings converge because a treeset only ever grows,
	// giving a finite monotone fixpoint exactly like the eager constraint
	// solver this package feeds.
	for changed := true; changed; {
		changed = false
		for name, rhsAddr := range mgr.bindRHS {
			rhs := mgr.m.Node(rhsAddr)
			if rhs == nil {
				continue
			}
			dst := mgr.bindings[name]
			if dst == nil {
				dst = newAddrSet()
				mgr.bindings[name] = dst
			}
			before := dst.Size()
			switch rhs.Kind {
			case ir.KindLiteral:
				if c, ok := mgr.byName[rhs.Symbol]; ok {
					dst.Add(c.Entry)
				}
			case ir.KindVariable:
				if src := mgr.bindings[rhs.Symbol]; src != nil {
					for _, v := range src.Values() {
						dst.Add(v)
					}
				}
			}
			if dst.Size() != before {
				changed = true
			}
		}
	}

	for _, site := range mgr.sites {
		out := newAddrSet()
		mgr.callees[site.Addr] = out
		calleeExpr := mgr.m.Node(site.Callee)
		resolvedDirect := false
		if calleeExpr != nil {
			switch calleeExpr.Kind {
			case ir.KindLiteral:
				if c, ok := mgr.byName[calleeExpr.Symbol]; ok {
					out.Add(c.Entry)
					resolvedDirect = true
				}
			case ir.KindVariable:
				if set := mgr.bindings[calleeExpr.Symbol]; set != nil && !set.Empty() {
					for _, v := range set.Values() {
						out.Add(v)
					}
					resolvedDirect = true
				}
			}
		}
		if !resolvedDirect {
			// Open call: every syntactically-compatible callable the program
			// has registered, plus the external sentinel.
			for _, c := range mgr.byName {
				out.Add(c.Entry)
			}
			out.Add(ExternalCallee.Entry)
		}
		for _, v := range out.Values() {
			entry := v.(ir.Addr)
			if mgr.callers[entry] == nil {
				mgr.callers[entry] = newAddrSet()
			}
			mgr.callers[entry].Add(site.Addr)
		}
	}
	mgr.resolved = true
}

// Callees returns every callable entry address site may invoke, ordered by
// address string. Resolve must have been called, directly or lazily (first
// call to Callees/Callers after a Scan triggers it).
func (mgr *Manager) Callees(site ir.Addr) []ir.Addr {
	if !mgr.resolved {
		mgr.Resolve()
	}
	return addrSetKeys(mgr.callees[site])
}

// Callers returns every call-site address that may invoke the callable
// entered at entry, ordered by address string.
func (mgr *Manager) Callers(entry ir.Addr) []ir.Addr {
	if !mgr.resolved {
		mgr.Resolve()
	}
	return addrSetKeys(mgr.callers[entry])
}

// AsCFGResolver adapts this Manager into a cfg.Resolver picking the
// lowest-ordered resolved callee (the entry a cfg.SubGraph is built from).
// It exists because cfg.Build wires one call block to one callee subgraph
// per call site; when a call site truly resolves to more than one callable
// (an indirect or open call), the CFG keeps only that one edge and the
// constraint-level analyses in this package remain the source of truth for
// the full callee set.
func (mgr *Manager) AsCFGResolver() func(call ir.Addr) (ir.Addr, bool) {
	return func(call ir.Addr) (ir.Addr, bool) {
		if !mgr.resolved {
			mgr.Resolve()
		}
		set := mgr.callees[call]
		if set == nil {
			return ir.Addr{}, false
		}
		for _, v := range set.Values() {
			entry := v.(ir.Addr)
			if entry != ExternalCallee.Entry {
				return entry, true
			}
		}
		return ir.Addr{}, false
	}
}
