package data

import (
	"fmt"
	"math"

	"github.com/sametz/fit-o-mat/expr"
)

// transformEps is the absolute floor of the finite-difference step used for
// error propagation; the step scales with the magnitude of the value.
const transformEps = 1e-9

// transformAxis remaps one axis through a compiled formula. The formula sees
// both x and y and must end with an assignment to the transformed axis.
//
// If the transformed axis carries an error column, the new error is
// propagated with one-sided finite-difference derivatives of the transform,
// combining x- and y-contributions in quadrature when both error columns are
// present.
func transformAxis(ds *DataSet, axis Axis, src string) error {
	c, err := expr.Compile(src, "", nil,
		expr.WithDepVar(axis.String()),
		expr.WithVars("y"),
	)
	if err != nil {
		return fmt.Errorf("transform of %s axis: %w", axis, err)
	}

	vars := map[string][]float64{"x": ds.X, "y": ds.Y}
	base, err := c.EvalWith(vars)
	if err != nil {
		return fmt.Errorf("transform of %s axis: %w", axis, err)
	}

	hasOwnErr := (axis == AxisX && ds.HasXErr()) || (axis == AxisY && ds.HasYErr())
	if hasOwnErr {
		newErr, err := propagateError(c, ds, base)
		if err != nil {
			return fmt.Errorf("transform of %s axis: %w", axis, err)
		}
		if axis == AxisX {
			ds.XErr = newErr
		} else {
			ds.YErr = newErr
		}
	}

	if axis == AxisX {
		ds.X = base
	} else {
		ds.Y = base
	}

	return nil
}

// propagateError computes the transformed error column. For each input axis
// that carries an error column, the whole axis vector is perturbed by a
// one-sided step and re-evaluated; per-row derivatives scale the original
// errors and the contributions combine in quadrature.
func propagateError(c *expr.Compiled, ds *DataSet, base []float64) ([]float64, error) {
	sq := make([]float64, ds.Len())

	contribute := func(vals, errs []float64, name string) error {
		if len(errs) == 0 {
			return nil
		}
		perturbed := make([]float64, len(vals))
		steps := make([]float64, len(vals))
		for i, v := range vals {
			h := transformEps * math.Max(1, math.Abs(v))
			perturbed[i] = v + h
			steps[i] = h
		}
		vars := map[string][]float64{"x": ds.X, "y": ds.Y}
		vars[name] = perturbed
		shifted, err := c.EvalWith(vars)
		if err != nil {
			return err
		}
		for i := range sq {
			deriv := (shifted[i] - base[i]) / steps[i]
			contrib := deriv * errs[i]
			sq[i] += contrib * contrib
		}

		return nil
	}

	if err := contribute(ds.X, ds.XErr, "x"); err != nil {
		return nil, err
	}
	if err := contribute(ds.Y, ds.YErr, "y"); err != nil {
		return nil, err
	}

	out := make([]float64, len(sq))
	for i, v := range sq {
		out[i] = math.Sqrt(v)
	}

	return out, nil
}
