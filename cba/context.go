package cba

import (
	"strings"

	"github.com/parastat/parastat/ir"
)

// Insensitive is the trivial context: every creation site collapses to one
// context-insensitive instance of itself, matching dvalue.GlobalContext's
// role for globals and "unknown external" locations.
type Insensitive struct{}

// CallString is a bounded calling context: the most recent k call-site
// addresses on the path to the current point, encoded as one comparable
// string so it can key a dvalue.Location / cba.Value directly, the same
// technique ir.Addr uses to keep a structured path comparable.
type CallString struct {
	key string
}

// GlobalCallString is the empty call string: the program's top level.
func GlobalCallString() CallString { return CallString{} }

// Push returns the call string obtained by appending site, truncated to the
// most recent k entries (k <= 0 means unbounded depth).
func (c CallString) Push(site ir.Addr, k int) CallString {
	parts := c.segments()
	parts = append(parts, site.String())
	if k > 0 && len(parts) > k {
		parts = parts[len(parts)-k:]
	}
	return CallString{key: strings.Join(parts, ">")}
}

// Depth reports how many call sites are recorded in c.
func (c CallString) Depth() int {
	if c.key == "" {
		return 0
	}
	return len(c.segments())
}

func (c CallString) segments() []string {
	if c.key == "" {
		return nil
	}
	return strings.Split(c.key, ">")
}

func (c CallString) String() string {
	if c.key == "" {
		return "<empty>"
	}
	return c.key
}
