package affine

import "github.com/pkg/errors"

// System is an ordered list of affine functions sharing one iteration
// vector, used for schedules and access functions. All functions within
// one System must reference the same vector.
type System struct {
	vector *IterVector
	rows   []*Func
}

// NewSystem builds an empty System over v.
func NewSystem(v *IterVector) *System { return &System{vector: v} }

// Append adds f as the next row. Returns an error if f is not over the
// System's own vector.
func (s *System) Append(f *Func) error {
	if f.vector != s.vector {
		return errors.New("affine: System.Append: function's vector does not match the system's")
	}
	s.rows = append(s.rows, f)
	return nil
}

// Rows returns the System's rows in order.
func (s *System) Rows() []*Func { return s.rows }

// Dim returns the number of rows (the schedule dimension, when s is a
// Stmt's scattering).
func (s *System) Dim() int { return len(s.rows) }

// Vector returns the shared iteration vector.
func (s *System) Vector() *IterVector { return s.vector }

// RebaseSystem re-bases every row onto a wider vector via an
// index-translation map derived from the two vectors.
func RebaseSystem(s *System, newIV *IterVector) *System {
	out := NewSystem(newIV)
	for _, row := range s.rows {
		out.rows = append(out.rows, ToBase(row, newIV))
	}
	return out
}

// ZeroPad returns a copy of s with n zero rows appended, used when a Scop's
// schedule dimension exceeds one statement's own.
func (s *System) ZeroPad(n int) *System {
	out := &System{vector: s.vector, rows: append([]*Func(nil), s.rows...)}
	for i := 0; i < n; i++ {
		zeroIter := make([]int64, s.vector.NumIterators())
		zeroParam := make([]int64, s.vector.NumParameters())
		f, _ := NewFunc(s.vector, zeroIter, zeroParam, 0)
		out.rows = append(out.rows, f)
	}
	return out
}
