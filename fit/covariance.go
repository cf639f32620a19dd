package fit

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// confidenceIntervals estimates one-sigma parameter uncertainties as the
// square roots of the covariance diagonal, with covariance (J^T J)^-1 of the
// weighted residual Jacobian at the fitted point.
//
// Degenerate results never escalate: a singular matrix or a non-finite
// diagonal entry returns a *NumericDegeneracyError and the caller falls back
// to undefined confidences for all parameters.
func confidenceIntervals(residFunc func(dst, p []float64), p []float64, rows int) ([]float64, *NumericDegeneracyError) {
	jac := numericJacobian(residFunc, p, rows)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		return nil, &NumericDegeneracyError{Msg: "singular curvature matrix"}
	}

	conf := make([]float64, len(p))
	for i := range conf {
		v := cov.At(i, i)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &NumericDegeneracyError{Msg: "non-finite confidence estimate"}
		}
		conf[i] = math.Sqrt(v)
	}

	return conf, nil
}

// numericJacobian builds the forward-difference Jacobian of the weighted
// residual vector.
func numericJacobian(residFunc func(dst, p []float64), p []float64, rows int) *mat.Dense {
	base := make([]float64, rows)
	residFunc(base, p)

	jac := mat.NewDense(rows, len(p), nil)
	shifted := make([]float64, rows)
	probe := append([]float64(nil), p...)
	for j := range p {
		h := math.Sqrt(2.2e-16) * math.Max(math.Abs(p[j]), 1)
		probe[j] = p[j] + h
		residFunc(shifted, probe)
		probe[j] = p[j]
		for i := 0; i < rows; i++ {
			jac.Set(i, j, (shifted[i]-base[i])/h)
		}
	}

	return jac
}
