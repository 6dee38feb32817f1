package cfg

import (
	"errors"

	"github.com/parastat/parastat/ir"
)

// Sentinel errors for cfg construction.
var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("cfg: invalid option supplied")

	// ErrRootNotFound indicates Build was asked to start from an address
	// the owning ir.Manager cannot resolve.
	ErrRootNotFound = errors.New("cfg: root address not found")

	// ErrNotPaired is returned by Graph.Validate when a call block and its
	// return block do not both reference each other.
	ErrNotPaired = errors.New("cfg: call/return blocks not paired")

	// ErrUnreachable is returned by Graph.Validate when a block cannot be
	// reached from its sub-graph's entry block.
	ErrUnreachable = errors.New("cfg: block unreachable from entry")

	// ErrNoSuccessor is returned by Graph.Validate when a non-exit block has
	// no outgoing edge.
	ErrNoSuccessor = errors.New("cfg: non-exit block has no successor")
)

// Granularity selects how IR statements are grouped into blocks (spec
// §4.6: "the policy is a construction-time choice").
type Granularity int

const (
	// OneStatementPerBlock gives every IR statement its own Block.
	OneStatementPerBlock Granularity = iota
	// MultiStatementPerBlock packs a maximal straight-line run of
	// statements into one Block.
	MultiStatementPerBlock
)

// Resolver maps a call IR address to the entry address of the callee's
// function body, when that callee is known statically. ok=false models an
// unresolved (open or indirect) call, which ResolveCalls wires to the
// external sentinel target.
type Resolver func(call ir.Addr) (calleeRoot ir.Addr, ok bool)

// Option configures Build via functional arguments, mirroring lvlath's
// functional-options idiom used throughout bfs/dfs.
type Option func(*buildOptions)

type buildOptions struct {
	granularity Granularity
	resolve     Resolver
	err         error
}

// DefaultOptions returns one-statement-per-block granularity and a resolver
// that never resolves (every call is external).
func DefaultOptions() buildOptions {
	return buildOptions{
		granularity: OneStatementPerBlock,
		resolve:     func(ir.Addr) (ir.Addr, bool) { return ir.Addr{}, false },
	}
}

// WithGranularity selects the block-grouping policy.
func WithGranularity(g Granularity) Option {
	return func(o *buildOptions) {
		if g != OneStatementPerBlock && g != MultiStatementPerBlock {
			o.err = errors.Join(o.err, ErrOptionViolation)
			return
		}
		o.granularity = g
	}
}

// WithResolver supplies the callee resolver used for direct/indirect call
// sites during construction.
func WithResolver(r Resolver) Option {
	return func(o *buildOptions) {
		if r != nil {
			o.resolve = r
		}
	}
}
