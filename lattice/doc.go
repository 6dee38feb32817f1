// Package lattice is the foundation every other package in this module
// builds on: a bounded-lattice factory with ⊤/⊥ short-circuiting, derived
// less-or-equal, and two ready-made instances (Flat and a bitset-backed
// powerset) used by dvalue and dataflow respectively.
//
//   - New / NewLowerSemi / NewUpperSemi build a Lattice[T] from explicit
//     top, bottom, and a meet/join-assign pair.
//   - NewFlat builds the flat lattice over any comparable base type.
//   - NewBitsetPowerset builds the powerset-of-n lattice used for
//     live-variable analysis.
package lattice
