package expr

import (
	"fmt"
	"math"
)

// value is either a scalar or a vector. Arithmetic broadcasts scalars over
// vectors the way the formula author expects; two vectors must agree in
// length.
type value struct {
	vec    []float64
	scalar float64
}

func scalarValue(f float64) value  { return value{scalar: f} }
func vecValue(v []float64) value   { return value{vec: v} }
func (v value) isVec() bool        { return v.vec != nil }
func (v value) at(i int) float64 {
	if v.vec != nil {
		return v.vec[i]
	}

	return v.scalar
}

type environ map[string]value

type node interface {
	eval(env environ) (value, error)
}

type numberNode struct {
	val float64
}

func (n *numberNode) eval(environ) (value, error) {
	return scalarValue(n.val), nil
}

type identNode struct {
	name string
	pos  int
}

func (n *identNode) eval(env environ) (value, error) {
	v, ok := env[n.name]
	if !ok {
		return value{}, fmt.Errorf("undefined name %q", n.name)
	}

	return v, nil
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval(env environ) (value, error) {
	v, err := n.operand.eval(env)
	if err != nil {
		return value{}, err
	}
	if n.op == tokPlus {
		return v, nil
	}
	if !v.isVec() {
		return scalarValue(-v.scalar), nil
	}
	out := make([]float64, len(v.vec))
	for i, f := range v.vec {
		out[i] = -f
	}

	return vecValue(out), nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(env environ) (value, error) {
	lv, err := n.left.eval(env)
	if err != nil {
		return value{}, err
	}
	rv, err := n.right.eval(env)
	if err != nil {
		return value{}, err
	}

	var op func(a, b float64) float64
	switch n.op {
	case tokPlus:
		op = func(a, b float64) float64 { return a + b }
	case tokMinus:
		op = func(a, b float64) float64 { return a - b }
	case tokStar:
		op = func(a, b float64) float64 { return a * b }
	case tokSlash:
		op = func(a, b float64) float64 { return a / b }
	case tokPow:
		op = math.Pow
	default:
		return value{}, fmt.Errorf("unsupported operator %s", n.op)
	}

	return broadcast(lv, rv, op)
}

// broadcast applies op elementwise, promoting scalars against vectors.
func broadcast(a, b value, op func(x, y float64) float64) (value, error) {
	if !a.isVec() && !b.isVec() {
		return scalarValue(op(a.scalar, b.scalar)), nil
	}
	n := 0
	if a.isVec() {
		n = len(a.vec)
	}
	if b.isVec() {
		if n != 0 && len(b.vec) != n {
			return value{}, fmt.Errorf("vector length mismatch: %d vs %d", n, len(b.vec))
		}
		n = len(b.vec)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = op(a.at(i), b.at(i))
	}

	return vecValue(out), nil
}

type callNode struct {
	name string
	args []node
	pos  int
}

func (n *callNode) eval(env environ) (value, error) {
	fn, ok := builtins[n.name]
	if !ok {
		return value{}, fmt.Errorf("unknown function %q", n.name)
	}
	if len(n.args) != fn.arity {
		return value{}, fmt.Errorf("function %q expects %d argument(s), got %d", n.name, fn.arity, len(n.args))
	}

	args := make([]value, len(n.args))
	width := -1 // -1 means all-scalar so far
	for i, arg := range n.args {
		v, err := arg.eval(env)
		if err != nil {
			return value{}, err
		}
		if v.isVec() {
			if width >= 0 && len(v.vec) != width {
				return value{}, fmt.Errorf("function %q: vector length mismatch", n.name)
			}
			width = len(v.vec)
		}
		args[i] = v
	}

	scratch := make([]float64, fn.arity)
	if width < 0 {
		for i, v := range args {
			scratch[i] = v.scalar
		}

		return scalarValue(fn.fn(scratch)), nil
	}

	out := make([]float64, width)
	for i := range out {
		for j, v := range args {
			scratch[j] = v.at(i)
		}
		out[i] = fn.fn(scratch)
	}

	return vecValue(out), nil
}

// stmt is a single "name = expression" statement.
type stmt struct {
	target string
	expr   node
}
