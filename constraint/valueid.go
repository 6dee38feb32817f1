package constraint

import "sync"

// ValueID is a typed opaque identifier naming a slot of a specific lattice
// in an Assignment. It is comparable so it can key maps directly.
type ValueID int

// Pool allocates fresh, distinct ValueIDs and remembers a debug label for
// each — mirroring ir.Manager's single-owner allocation discipline, scoped
// to one analysis instance rather than shared globally.
type Pool struct {
	mu     sync.Mutex
	next   ValueID
	labels map[ValueID]string
}

// NewPool returns an empty Pool.
func NewPool() *Pool { return &Pool{labels: map[ValueID]string{}} }

// Fresh returns a new ValueID not previously returned by p, tagged with an
// optional debug label.
func (p *Pool) Fresh(label string) ValueID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	id := p.next
	p.labels[id] = label
	return id
}

// Label returns the debug label id was allocated with, or "" if unknown.
func (p *Pool) Label(id ValueID) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.labels[id]
}
