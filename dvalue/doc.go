// See dvalue.go for the package overview; refs.go adds the reference-value
// and data-path vocabulary that the cba package's reference analysis is
// built on, and setentry.go adds the second-order set-of-trees variant's
// widening.
package dvalue
