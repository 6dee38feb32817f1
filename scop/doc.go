// Package scop implements the polyhedral Static Control Part model of spec
// §3 ("SCoP Model"), §4.5 ("SCoP Extractor and Model"), and §4.10 ("SCoP
// Codegen and Transformations"): marking affine loop nests in the IR,
// assembling their Stmt/Scop symbolic representation, querying dependences
// and parallelism, and rewriting a Scop's schedule (interchange,
// strip-mining, tiling, fusion) before lowering it back to IR.
//
// Extraction convention for KindFor nodes: Symbol names the loop's iterator;
// Operands[0] is the exit condition (an affine comparison of the iterator
// against an upper-bound expression, shared with cfg's generic loop
// builder); Operands[1] is the loop body. Two further operands are
// optional and affine-only when present: Operands[2] is an explicit lower
// bound expression (default 0 when absent) and Operands[3] is an explicit
// step literal (default 1 when absent).
package scop
