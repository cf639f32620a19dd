package optimize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/expr"
	"github.com/sametz/fit-o-mat/fit"
	"github.com/sametz/fit-o-mat/model"
)

// quadraticProblem builds a dataset and model whose chi-square is a simple
// quadratic bowl with its minimum at A0=2, A1=3.
func quadraticProblem(t *testing.T, seedA0, seedA1 float64) (*data.DataSet, *model.Model) {
	t.Helper()
	x := expr.Linspace(0, 5, 20)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = 2 + 3*xi
	}
	ds := &data.DataSet{X: x, Y: y}

	params := model.ParamSet{
		model.NewParam("A0", seedA0, true),
		model.NewParam("A1", seedA1, true),
	}
	compiled, err := expr.Compile("y = A0 + A1*x", params.Decl(), params.FreeValues())
	require.NoError(t, err)
	m, err := model.New(compiled, params)
	require.NoError(t, err)

	return ds, m
}

func TestStochasticSearch_ImprovesChiSquare(t *testing.T) {
	ds, m := quadraticProblem(t, 10, -5)

	res, err := StochasticSearch(ds, m, WithSeed(42), WithStallLimit(2000))
	require.NoError(t, err)

	assert.LessOrEqual(t, res.ChiSquare, res.StartChiSquare)
	assert.Less(t, res.ChiSquare, res.StartChiSquare, "expected improvement from a bad seed")
	assert.Equal(t, res.Params, m.Params().FreeValues())
	assert.False(t, res.Cancelled)
	assert.Positive(t, res.Evaluations)
}

func TestStochasticSearch_MonotoneFromOptimum(t *testing.T) {
	// Seeded at the exact minimum there is nothing to gain, and the greedy
	// acceptance rule must never make things worse.
	ds, m := quadraticProblem(t, 2, 3)

	res, err := StochasticSearch(ds, m, WithSeed(7), WithStallLimit(500))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.StartChiSquare, 1e-18)
	assert.LessOrEqual(t, res.ChiSquare, res.StartChiSquare)
}

func TestStochasticSearch_Cancellation(t *testing.T) {
	ds, m := quadraticProblem(t, 10, -5)

	cancel := NewCancel()
	calls := 0
	res, err := StochasticSearch(ds, m,
		WithSeed(1),
		WithCancel(cancel),
		WithProgress(func(p Progress) {
			calls++
			cancel.Cancel()
		}),
	)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, 1, calls, "search must stop at the first checkpoint after cancellation")
	require.Len(t, res.Params, 2)
	for _, v := range res.Params {
		assert.False(t, math.IsNaN(v))
	}
}

func TestStochasticSearch_NoFreeParameters(t *testing.T) {
	ds, _ := quadraticProblem(t, 1, 1)
	params := model.ParamSet{model.NewParam("A0", 2, false)}
	compiled, err := expr.Compile("y = A0 + 0*x", "", nil, expr.WithConst("A0", 2))
	require.NoError(t, err)
	m, err := model.New(compiled, params)
	require.NoError(t, err)

	_, err = StochasticSearch(ds, m)
	var insufficient *fit.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
}

func TestGridSearch_ImprovesChiSquare(t *testing.T) {
	// The minimum (2, 3) is reachable from (1, 1) by multiplicative factors
	// within the grid span.
	ds, m := quadraticProblem(t, 1, 1)

	res, err := GridSearch(ds, m)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.ChiSquare, res.StartChiSquare)
	assert.Less(t, res.ChiSquare, res.StartChiSquare)
	assert.Equal(t, res.Params, m.Params().FreeValues())
}

func TestGridSearch_SignFlip(t *testing.T) {
	// Seeded with the wrong sign: only the reflected negative half of the
	// grid can cross zero.
	ds, m := quadraticProblem(t, -2, -3)

	res, err := GridSearch(ds, m)
	require.NoError(t, err)
	assert.Less(t, res.ChiSquare, res.StartChiSquare)
	assert.Greater(t, res.Params[1], 0.0, "slope must have flipped sign")
}

func TestGridSearch_Deterministic(t *testing.T) {
	ds1, m1 := quadraticProblem(t, 1, 1)
	ds2, m2 := quadraticProblem(t, 1, 1)

	res1, err := GridSearch(ds1, m1)
	require.NoError(t, err)
	res2, err := GridSearch(ds2, m2)
	require.NoError(t, err)

	assert.Equal(t, res1.Params, res2.Params)
	assert.Equal(t, res1.Evaluations, res2.Evaluations)
}

func TestGridSearch_BudgetBoundsEvaluations(t *testing.T) {
	ds, m := quadraticProblem(t, 1, 1)

	res, err := GridSearch(ds, m, WithBudget(100), WithCycles(2))
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Evaluations, 2*100+1)
}

func TestGridSearch_Cancellation(t *testing.T) {
	ds, m := quadraticProblem(t, 1, 1)

	cancel := NewCancel()
	cancel.Cancel() // pre-cancelled: stop at the very first checkpoint
	res, err := GridSearch(ds, m, WithCancel(cancel))
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	require.Len(t, res.Params, 2)
}

func TestGridFactors(t *testing.T) {
	factors := gridFactors(2, 10000)
	require.Len(t, factors, 100)

	half := len(factors) / 2
	for i, f := range factors[:half] {
		assert.Greater(t, f, 0.0)
		assert.Equal(t, -f, factors[half+i])
		assert.GreaterOrEqual(t, f, 1/gridSpan-1e-12)
		assert.LessOrEqual(t, f, gridSpan+1e-12)
	}

	// high-dimensional problems still get a minimal two-point grid
	assert.Len(t, gridFactors(20, 10000), 2)
}

func TestObjective_SigmaRuleMatchesFitter(t *testing.T) {
	// A zero y-error must weight the same here as in the fit that follows,
	// so a search never reports a chi-square the fitter would disagree with.
	ds, m := quadraticProblem(t, 2, 3)
	ds.YErr = make([]float64, ds.Len())
	for i := range ds.YErr {
		ds.YErr[i] = 0.5
	}
	ds.YErr[0] = 0

	sigma, warned := fit.SigmaWeights(ds)
	require.True(t, warned)

	obj := objective(ds, m)
	p := []float64{1, 3} // off by 1 in A0: residual 1 on every row
	var want float64
	for _, s := range sigma {
		want += 1 / (s * s)
	}
	assert.InEpsilon(t, want, obj(p), 1e-12)
}

func TestSearchOptionValidation(t *testing.T) {
	ds, m := quadraticProblem(t, 1, 1)

	_, err := GridSearch(ds, m, WithCycles(0))
	require.Error(t, err)
	_, err = GridSearch(ds, m, WithBudget(0))
	require.Error(t, err)
	_, err = StochasticSearch(ds, m, WithStallLimit(0))
	require.Error(t, err)
}

func TestProgressReporting(t *testing.T) {
	ds, m := quadraticProblem(t, 10, -5)

	var records []Progress
	_, err := StochasticSearch(ds, m,
		WithSeed(3),
		WithStallLimit(1500),
		WithProgress(func(p Progress) { records = append(records, p) }),
	)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i].Evaluations, records[i-1].Evaluations)
		assert.LessOrEqual(t, records[i].BestChiSquare, records[i-1].BestChiSquare)
	}
}
