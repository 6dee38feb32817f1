package affine

import (
	"github.com/pkg/errors"

	"github.com/parastat/parastat/ir"
)

// FromIR converts an IR expression to an affine function over v, succeeding
// exactly when the expression is a linear form over program variables.
// New program variables encountered are auto-added as
// parameters of v (so v may grow as a side effect of a successful
// conversion). Anything else — a call, a non-linear operator, a reference
// expression — fails with ErrNotAffine.
func FromIR(m *ir.Manager, v *IterVector, addr ir.Addr) (*Func, error) {
	iterCoefs := make([]int64, v.NumIterators())
	paramCoefs := make([]int64, v.NumParameters())
	var constant int64

	var walk func(addr ir.Addr, sign int64) error
	walk = func(addr ir.Addr, sign int64) error {
		n := m.Node(addr)
		if n == nil {
			return errors.Wrap(ErrNotAffine, "dangling address")
		}
		switch n.Kind {
		case ir.KindLiteral:
			constant += sign * n.Const
			return nil
		case ir.KindVariable:
			if i := v.IteratorIndex(n.Symbol); i >= 0 {
				iterCoefs[i] += sign
				return nil
			}
			if p := v.ParameterIndex(n.Symbol); p >= 0 {
				paramCoefs[p] += sign
				return nil
			}
			// unseen variable: auto-add as a parameter.
			p := v.AddParameter(n.Symbol)
			paramCoefs = append(paramCoefs, 0)
			paramCoefs[p] += sign
			return nil
		case ir.KindBinOp:
			if len(n.Operands) != 2 {
				return errors.Wrap(ErrNotAffine, "binop arity")
			}
			switch n.Symbol {
			case "+":
				if err := walk(n.Operands[0], sign); err != nil {
					return err
				}
				return walk(n.Operands[1], sign)
			case "-":
				if err := walk(n.Operands[0], sign); err != nil {
					return err
				}
				return walk(n.Operands[1], -sign)
			case "*":
				return walkMul(m, n.Operands[0], n.Operands[1], sign, &constant, iterCoefs, paramCoefs, v)
			default:
				return errors.Wrapf(ErrNotAffine, "non-affine operator %q", n.Symbol)
			}
		default:
			return errors.Wrapf(ErrNotAffine, "non-affine node kind %s", n.Kind)
		}
	}

	if err := walk(addr, 1); err != nil {
		return nil, err
	}
	return NewFunc(v, iterCoefs, paramCoefs, constant)
}

// walkMul handles multiplication, which is affine only when one side is a
// compile-time integer literal constant. The non-literal side must reference
// only variables already present in v: growing v mid-multiplication would
// require resizing the caller's coefficient slices out from under it, so
// this conservatively requires the variable to be known in advance (a
// multiplication is rarely the first place a new parameter is introduced in
// practice) rather than risk an inconsistent Func.
func walkMul(m *ir.Manager, lhs, rhs ir.Addr, sign int64, constant *int64, iterCoefs, paramCoefs []int64, v *IterVector) error {
	ln, rn := m.Node(lhs), m.Node(rhs)
	if ln == nil || rn == nil {
		return errors.Wrap(ErrNotAffine, "dangling multiplication operand")
	}
	var other ir.Addr
	var scale int64
	switch {
	case ln.Kind == ir.KindLiteral:
		other, scale = rhs, ln.Const
	case rn.Kind == ir.KindLiteral:
		other, scale = lhs, rn.Const
	default:
		return errors.Wrap(ErrNotAffine, "product of two non-constant terms")
	}
	on := m.Node(other)
	if on == nil {
		return errors.Wrap(ErrNotAffine, "dangling multiplication operand")
	}
	switch on.Kind {
	case ir.KindLiteral:
		*constant += sign * scale * on.Const
		return nil
	case ir.KindVariable:
		if i := v.IteratorIndex(on.Symbol); i >= 0 {
			iterCoefs[i] += sign * scale
			return nil
		}
		if p := v.ParameterIndex(on.Symbol); p >= 0 {
			paramCoefs[p] += sign * scale
			return nil
		}
		return errors.Wrapf(ErrNotAffine, "variable %q not known before multiplication", on.Symbol)
	default:
		return errors.Wrap(ErrNotAffine, "non-affine multiplication operand")
	}
}
