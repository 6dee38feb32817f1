package cba

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parastat/parastat/dvalue"
	"github.com/parastat/parastat/ir"
)

// kind tags what a Value actually denotes: a reference (location + data
// path), a thread body, or one of the two artificial "unknown external"
// sentinels.
type kind int

const (
	kindRef kind = iota
	kindThreadBody
	kindExternal
)

// Value is the lattice element the reference/data-path/thread-body
// generators populate ValueIDs with: a reference (location, data-path)
// pair, a thread-body address, or an external sentinel, flattened
// into one comparable struct so it can be used directly as the element type
// of constraint.Assignment[Value[C]] — dvalue.Ref's own Path field is a
// slice and so is not itself comparable; Value stores the path pre-encoded
// as a string (the same technique ir.Addr uses for sub-node paths).
type Value[C comparable] struct {
	k        kind
	Site     ir.Addr
	Ctx      C
	pathKey  string
	Callable ir.Addr
	sentinel int
}

// RefValue constructs the Value denoting the reference (loc(site,ctx), path).
func RefValue[C comparable](site ir.Addr, ctx C, path dvalue.Path) Value[C] {
	return Value[C]{k: kindRef, Site: site, Ctx: ctx, pathKey: encodePath(path)}
}

// ThreadBodyValue constructs the Value denoting the thread body at bodyAddr.
func ThreadBodyValue[C comparable](bodyAddr ir.Addr) Value[C] {
	return Value[C]{k: kindThreadBody, Callable: bodyAddr}
}

// two distinct sentinel externals per analysis instantiation: distinguished
// by the sentinel field alone, so External1[C] != External2[C] for the same
// C. Both seed the everything-can-alias conservative answer whenever an
// external value can reach the analyzed program.
func External1[C comparable]() Value[C] { return Value[C]{k: kindExternal, sentinel: 1} }
func External2[C comparable]() Value[C] { return Value[C]{k: kindExternal, sentinel: 2} }

// IsRef, IsThreadBody, IsExternal classify a Value.
func (v Value[C]) IsRef() bool        { return v.k == kindRef }
func (v Value[C]) IsThreadBody() bool { return v.k == kindThreadBody }
func (v Value[C]) IsExternal() bool   { return v.k == kindExternal }

// Path decodes v's data path. Only meaningful when v.IsRef().
func (v Value[C]) Path() dvalue.Path { return decodePath(v.pathKey) }

// Ref converts v to a dvalue.Ref, when v.IsRef().
func (v Value[C]) Ref() (dvalue.Ref[ir.Addr, C], bool) {
	if !v.IsRef() {
		var zero dvalue.Ref[ir.Addr, C]
		return zero, false
	}
	return dvalue.Ref[ir.Addr, C]{Loc: dvalue.Location[ir.Addr, C]{Site: v.Site, Ctx: v.Ctx}, Path: v.Path()}, true
}

// Narrow returns the Value obtained by appending step to v's data path
// (narrow(ref,path)). Only valid when v.IsRef(); callers combine this with
// Generator's conservative propagation of non-ref values.
func (v Value[C]) Narrow(step dvalue.Index) Value[C] {
	out := v
	out.pathKey = encodePath(v.Path().Append(step))
	return out
}

// Expand returns the Value obtained by prepending step to v's data path
// (expand(ref,path), symmetric to Narrow).
func (v Value[C]) Expand(step dvalue.Index) Value[C] {
	out := v
	out.pathKey = encodePath(v.Path().Prepend(step))
	return out
}

// Aliases reports whether v and other may alias: true when either is
// external (the conservative "everything can alias" answer),
// equal locations with overlapping (prefix-related) paths when both are
// refs, and never for a ref vs. a thread body.
func (v Value[C]) Aliases(other Value[C]) bool {
	if v.IsExternal() || other.IsExternal() {
		return true
	}
	if v.IsRef() && other.IsRef() {
		if v.Site != other.Site || v.Ctx != other.Ctx {
			return false
		}
		p, q := v.Path(), other.Path()
		return pathIsPrefix(p, q) || pathIsPrefix(q, p)
	}
	return v.IsThreadBody() && other.IsThreadBody() && v.Callable == other.Callable
}

func (v Value[C]) String() string {
	switch v.k {
	case kindExternal:
		return fmt.Sprintf("external#%d", v.sentinel)
	case kindThreadBody:
		return fmt.Sprintf("thread(%s)", v.Callable)
	default:
		if v.pathKey == "" {
			return fmt.Sprintf("loc(%s,%v)", v.Site, v.Ctx)
		}
		return fmt.Sprintf("loc(%s,%v)[%s]", v.Site, v.Ctx, v.pathKey)
	}
}

func pathIsPrefix(p, of dvalue.Path) bool {
	if len(p) > len(of) {
		return false
	}
	for i := range p {
		if p[i] != of[i] {
			return false
		}
	}
	return true
}

// encodePath/decodePath give dvalue.Path (a slice, hence not comparable) a
// comparable string encoding so it can live inside Value. Field names are
// assumed not to contain ':' or '|'; the IR stand-in never produces such
// names.
func encodePath(p dvalue.Path) string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = strconv.Itoa(int(step.Kind)) + ":" + step.Name + ":" + strconv.Itoa(step.Pos)
	}
	return strings.Join(parts, "|")
}

func decodePath(s string) dvalue.Path {
	if s == "" {
		return nil
	}
	segs := strings.Split(s, "|")
	out := make(dvalue.Path, 0, len(segs))
	for _, seg := range segs {
		fields := strings.SplitN(seg, ":", 3)
		if len(fields) != 3 {
			continue
		}
		k, _ := strconv.Atoi(fields[0])
		pos, _ := strconv.Atoi(fields[2])
		out = append(out, dvalue.Index{Kind: dvalue.IndexKind(k), Name: fields[1], Pos: pos})
	}
	return out
}
