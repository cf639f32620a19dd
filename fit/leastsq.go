package fit

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/internal/options"
	"github.com/sametz/fit-o-mat/model"
)

const (
	// DefaultMaxIterations bounds the LM solver.
	DefaultMaxIterations = 100

	// weightEpsilon replaces zero or negative y-errors so weighting stays
	// finite.
	weightEpsilon = 1e-30
)

type fitConfig struct {
	maxIter      int
	objectiveTol float64
}

// Option configures LeastSquares.
type Option = options.Option[*fitConfig]

// WithMaxIterations bounds the solver iteration count.
func WithMaxIterations(n int) Option {
	return options.New(func(cfg *fitConfig) error {
		if n < 1 {
			return fmt.Errorf("iteration bound must be positive, got %d", n)
		}
		cfg.maxIter = n

		return nil
	})
}

// WithObjectiveTol sets the solver's objective convergence tolerance.
func WithObjectiveTol(tol float64) Option {
	return options.NoError(func(cfg *fitConfig) {
		cfg.objectiveTol = tol
	})
}

// solve runs the LM solver; tests swap it to exercise the non-convergence
// path.
var solve = func(problem lm.LMProblem, settings *lm.Settings) ([]float64, error) {
	results, err := lm.LM(problem, settings)
	if err != nil {
		return nil, err
	}

	return results.X, nil
}

// LeastSquares fits m to ds with weighted Levenberg-Marquardt, seeded from
// the model's current parameter values.
//
// On success the model's free parameters and confidences are updated and the
// dataset's FVal/Resid columns are set. On solver failure the seed values are
// kept, the report is marked unsuccessful and confidences stay undefined;
// this is not an error. Only structurally impossible fits return an error
// (*InsufficientDataError).
func LeastSquares(ds *data.DataSet, m *model.Model, opts ...Option) (*Report, error) {
	cfg := &fitConfig{maxIter: DefaultMaxIterations, objectiveTol: 1e-16}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	params := m.Params()
	nFree := params.FreeCount()
	if nFree == 0 || ds.Len() < nFree {
		return nil, &InsufficientDataError{Rows: ds.Len(), FreeParams: nFree}
	}

	report := &Report{}
	weights, warned := SigmaWeights(ds)
	if warned {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("zero or negative y-errors replaced with %g", weightEpsilon))
	}

	// Weighted residual vector for the solver: (f(x_i) - y_i) / sigma_i.
	residFunc := func(dst, p []float64) {
		fv := m.Evaluate(ds.X, p)
		for i := range dst {
			dst[i] = (fv[i] - ds.Y[i]) / weights[i]
		}
	}

	seed := params.FreeValues()
	numJac := lm.NumJac{Func: residFunc}
	problem := lm.LMProblem{
		Dim:        nFree,
		Size:       ds.Len(),
		Func:       residFunc,
		Jac:        numJac.Jac,
		InitParams: seed,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	fitted := append([]float64(nil), seed...)
	solved, err := solve(problem, &lm.Settings{
		Iterations:   cfg.maxIter,
		ObjectiveTol: cfg.objectiveTol,
	})
	report.Success = err == nil
	if report.Success {
		fitted = append(fitted[:0], solved...)
	} else {
		report.Warnings = append(report.Warnings, fmt.Sprintf("solver did not converge: %v", err))
	}

	// The model is updated with whatever came back, successful or not.
	if err := params.SetFreeValues(fitted); err != nil {
		return nil, err
	}
	if err := ds.SetFVal(m.Evaluate(ds.X, fitted)); err != nil {
		return nil, err
	}

	report.DoF = ds.Len() - nFree
	report.ChiSquare = chiSquare(ds, weights)
	if report.DoF > 0 {
		report.ReducedChiSquare = report.ChiSquare / float64(report.DoF)
	} else {
		report.ReducedChiSquare = math.Inf(1)
	}

	confidences := undefinedConfidences(nFree)
	if report.Success {
		conf, degeneracy := confidenceIntervals(residFunc, fitted, ds.Len())
		if degeneracy != nil {
			report.Warnings = append(report.Warnings, degeneracy.Error())
		} else {
			confidences = conf
		}
	}
	if err := params.SetConfidences(confidences); err != nil {
		return nil, err
	}
	report.Params = params.Clone()

	return report, nil
}

// SigmaWeights returns the per-row y uncertainties used for chi-square
// weighting, falling back to uniform weight 1 without a y-error column.
// Non-positive uncertainties are replaced with a small epsilon; warned
// reports whether that happened. The parameter searches weight their
// objective with the same rule so a search and the fit that follows it agree
// on chi-square.
func SigmaWeights(ds *data.DataSet) (sigma []float64, warned bool) {
	sigma = make([]float64, ds.Len())
	if !ds.HasYErr() {
		for i := range sigma {
			sigma[i] = 1
		}

		return sigma, false
	}
	for i, e := range ds.YErr {
		if e <= 0 {
			sigma[i] = weightEpsilon
			warned = true
		} else {
			sigma[i] = e
		}
	}

	return sigma, warned
}

// chiSquare sums squared residuals weighted by sigma. Requires ds.Resid to
// be populated.
func chiSquare(ds *data.DataSet, sigma []float64) float64 {
	var sum float64
	for i, r := range ds.Resid {
		w := r / sigma[i]
		sum += w * w
	}

	return sum
}

func undefinedConfidences(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = model.ConfidenceUndefined()
	}

	return out
}
