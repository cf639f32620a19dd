// Package fitomat provides a non-linear model-fitting and data-preprocessing
// engine for tabular x/y observations.
//
// Models are ordinary text formulas ("y = A0 * exp(-A1 * x)") compiled into
// vectorized callables, with free parameters refined by damped least squares
// and, when a fit needs help escaping a poor start, by stochastic or grid
// parameter searches.
//
// # Core Features
//
//   - Formula compiler with multi-statement programs and a fixed math library
//   - Levenberg-Marquardt least-squares fitting with confidence intervals
//   - Stochastic and logarithmic grid searches for starting-value discovery
//   - Tabular data preprocessing (error models, reduction, axis transforms)
//   - Saved-function files and compressed session snapshots
//
// # Basic Usage
//
// Compiling a model and fitting it to data:
//
//	import "github.com/sametz/fit-o-mat"
//
//	params := model.ParamSet{
//	    model.NewParam("A0", 1, true),
//	    model.NewParam("A1", 1, true),
//	}
//	m, _ := fitomat.CompileModel("y = A0 + A1 * x", params)
//
//	ds := &data.DataSet{
//	    X: []float64{0, 1, 2, 3, 4},
//	    Y: []float64{5, 3.2, 2.3, 1.9, 1.7},
//	}
//	report, _ := fitomat.FitLeastSquares(ds, m)
//	fmt.Print(report.Format())
//
// Refining a poor starting guess before the fit:
//
//	result, _ := fitomat.SearchStochastic(ds, m)
//	fmt.Printf("chi square %g -> %g\n", result.StartChiSquare, result.ChiSquare)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the engine
// packages, simplifying the most common use cases. For fine-grained control,
// use expr, model, data, fit and optimize directly.
package fitomat

import (
	"io"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/expr"
	"github.com/sametz/fit-o-mat/fit"
	"github.com/sametz/fit-o-mat/model"
	"github.com/sametz/fit-o-mat/optimize"
	"github.com/sametz/fit-o-mat/prefs"
	"github.com/sametz/fit-o-mat/statefile"
)

// CompileModel compiles a formula against the free parameters of params and
// binds the result into a model.
//
// Fixed parameters are baked in as named constants; free parameters stay
// positional and are refined by fits and searches. Compilation includes a
// shape-validation call across the display domain, so formulas that yield a
// scalar instead of a curve are rejected here.
//
// Parameters:
//   - formula: statement sequence ending in an assignment to y
//   - params: full parameter vector, free and fixed
//   - opts: optional compile configuration (see expr.Option)
//
// Returns:
//   - *model.Model: the compiled, active model.
//   - error: *expr.CompileError or *expr.EvaluationError on a bad formula.
//
// Example:
//
//	m, err := fitomat.CompileModel("y = A0 * sin(A1 * x)", params,
//	    expr.WithDomain(-10, 10, 500),
//	)
func CompileModel(formula string, params model.ParamSet, opts ...expr.Option) (*model.Model, error) {
	fixed := make([]expr.Option, 0, len(params)+len(opts))
	for _, p := range params {
		if !p.Free {
			fixed = append(fixed, expr.WithConst(p.Name, p.Value))
		}
	}
	fixed = append(fixed, opts...)

	compiled, err := expr.Compile(formula, params.Decl(), params.FreeValues(), fixed...)
	if err != nil {
		return nil, err
	}

	return model.New(compiled, params)
}

// FitLeastSquares refines the model's free parameters against the dataset by
// damped least squares and attaches model values and residuals to ds.
//
// The model's parameter values are updated in place whether or not the solver
// converged; Report.Success distinguishes the two. Confidence intervals come
// from the numeric covariance at the optimum and degrade to undefined when
// the problem is degenerate.
//
// Example:
//
//	report, err := fitomat.FitLeastSquares(ds, m,
//	    fit.WithMaxIterations(200),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(report.Format())
func FitLeastSquares(ds *data.DataSet, m *model.Model, opts ...fit.Option) (*fit.Report, error) {
	return fit.LeastSquares(ds, m, opts...)
}

// SearchStochastic runs the cycled stochastic parameter search. Parameter
// values only improve: the model ends at the best chi square seen, including
// when the run is cancelled mid-cycle.
func SearchStochastic(ds *data.DataSet, m *model.Model, opts ...optimize.Option) (*optimize.Result, error) {
	return optimize.StochasticSearch(ds, m, opts...)
}

// SearchGrid runs the multiplicative grid search around the current parameter
// values. Like SearchStochastic it is strictly monotonic in chi square.
func SearchGrid(ds *data.DataSet, m *model.Model, opts ...optimize.Option) (*optimize.Result, error) {
	return optimize.GridSearch(ds, m, opts...)
}

// SimulateCurve evaluates the model's stored parameter values over n evenly
// spaced points spanning [min, max].
func SimulateCurve(m *model.Model, min, max float64, n int) (xs, ys []float64) {
	return m.Simulate(expr.Linspace(min, max, n))
}

// SaveSnapshot writes a compressed session snapshot of the model and dataset.
// The compression codec comes from the preferences' snapshot_compression.
func SaveSnapshot(w io.Writer, m *model.Model, ds *data.DataSet, p prefs.Preferences) error {
	comp, err := p.Compression()
	if err != nil {
		return err
	}
	snap := &statefile.Snapshot{
		Formula: m.Compiled().Source(),
		Params:  m.Params().Clone(),
		Data:    ds,
	}

	return statefile.WriteSnapshot(w, snap, comp)
}

// LoadSnapshot restores a session snapshot: the formula is recompiled against
// the saved parameters and the dataset comes back without fit-derived
// columns.
func LoadSnapshot(r io.Reader) (*model.Model, *data.DataSet, error) {
	snap, err := statefile.ReadSnapshot(r)
	if err != nil {
		return nil, nil, err
	}
	m, err := CompileModel(snap.Formula, snap.Params)
	if err != nil {
		return nil, nil, err
	}

	return m, snap.Data, nil
}
