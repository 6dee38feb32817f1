// Package cfg builds the control-flow graph consumed by the dataflow
// solver: blocks of IR statements linked by (possibly guarded) edges, with
// per-IR-root entry/exit pairs and paired call/return blocks for each call
// site.
package cfg
