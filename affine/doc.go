// See affine.go for IterVector/Func, constraint.go for the DNF-convertible
// constraint combiners, domain.go for IterationDomain, system.go for the
// ordered-row AffineSystem used by schedules and access functions, and
// fromir.go for the IR→affine-function constructor.
package affine
