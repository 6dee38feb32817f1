package scop_test

import (
	"fmt"

	"github.com/parastat/parastat/ir"
	"github.com/parastat/parastat/islfacade"
	"github.com/parastat/parastat/scop"
)

// ExampleExtract builds a single affine loop with a write and a
// loop-carried-shifted read, extracts it into a Scop, and prints the
// resulting statement count and schedule dimensionality.
func ExampleExtract() {
	m := ir.NewManager()
	loop, _, _ := rawLoop(m)

	s, err := scop.Extract(m, loop)
	if err != nil {
		panic(err)
	}
	fmt.Println(len(s.Stmts()), s.ScheduleDim())
	// Output:
	// 2 3
}

// ExampleIsParallel shows the parallelism test rejecting a loop whose body
// writes A[i] and reads A[i-1]: the read depends on a write from a
// different, earlier iteration, so the outer dimension carries a
// dependence.
func ExampleIsParallel() {
	m := ir.NewManager()
	loop, _, _ := rawLoop(m)
	s, err := scop.Extract(m, loop)
	if err != nil {
		panic(err)
	}

	ctx := islfacade.NewContext()
	fmt.Println(scop.IsParallel(ctx, s))
	// Output:
	// false
}

// ExampleToIR round-trips a strip-mined loop back through code generation,
// printing the regenerated outer loop's node kind.
func ExampleToIR() {
	m := ir.NewManager()
	loop, _, _ := rawLoop(m)
	s, err := scop.Extract(m, loop)
	if err != nil {
		panic(err)
	}
	if err := scop.StripMine(s, 0, 4); err != nil {
		panic(err)
	}

	addr, err := scop.ToIR(m, s)
	if err != nil {
		panic(err)
	}
	fmt.Println(m.Node(addr).Kind)
	// Output:
	// for
}
