package islfacade

import (
	"fmt"
	"sync"

	"github.com/parastat/parastat/affine"
)

// ErrUnsupportedSet is a modeling-limitation error: the requested set/map is
// outside what this facade's exact-integer engine can represent. Callers
// should treat the query's result as conservative top.
var ErrUnsupportedSet = fmt.Errorf("islfacade: set/map shape not supported by this engine")

// Context owns the external library's context resource (here: the name
// table and the destroyed flag) for exactly one analysis instance. It is
// non-copyable; copying a Context by value is a programming error, since
// the integer-set library context must be owned by exactly one facade
// instance.
type Context struct {
	mu        sync.Mutex
	irToLib   map[string]string
	libToIR   map[string]string
	nextID    int
	destroyed bool
}

// NewContext returns a fresh, empty Context.
func NewContext() *Context {
	return &Context{irToLib: map[string]string{}, libToIR: map[string]string{}}
}

// InstallName installs a unique-within-this-context library name for an IR
// tuple name, returning the (possibly suffixed) library name actually
// installed.
func (c *Context) InstallName(irName string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lib, ok := c.irToLib[irName]; ok {
		return lib
	}
	lib := irName
	for {
		if _, taken := c.libToIR[lib]; !taken {
			break
		}
		c.nextID++
		lib = fmt.Sprintf("%s_%d", irName, c.nextID)
	}
	c.irToLib[irName] = lib
	c.libToIR[lib] = irName
	return lib
}

// Destroy marks the Context destroyed. Afterward, building a new handle on
// it or combining Sets with Union, Intersect or Subtract panics.
func (c *Context) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
}

func (c *Context) checkAlive() {
	c.mu.Lock()
	dead := c.destroyed
	c.mu.Unlock()
	if dead {
		panic("islfacade: use of Context after Destroy")
	}
}

// handle is the state every owned object (Set, Map, PwQPoly) shares: the
// owning Context.
type handle struct {
	ctx *Context
}

func newHandle(ctx *Context) handle {
	ctx.checkAlive()
	return handle{ctx: ctx}
}

// installVectorNames installs library names for every dimension of v: on
// construction of a set/map from an iteration vector, the library's
// dimensions get names unique within that context.
func installVectorNames(ctx *Context, v *affine.IterVector) []string {
	names := make([]string, 0, v.NumIterators())
	for i := 0; i < v.NumIterators(); i++ {
		names = append(names, ctx.InstallName(v.IteratorName(i)))
	}
	return names
}
