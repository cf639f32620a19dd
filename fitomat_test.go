package fitomat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/expr"
	"github.com/sametz/fit-o-mat/model"
	"github.com/sametz/fit-o-mat/prefs"
)

func lineParams() model.ParamSet {
	return model.ParamSet{
		model.NewParam("A0", 1, true),
		model.NewParam("A1", 1, true),
	}
}

func lineDataSet() *data.DataSet {
	x := expr.Linspace(0, 5, 20)
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2 + 3*v
	}

	return &data.DataSet{X: x, Y: y}
}

func TestCompileModel(t *testing.T) {
	m, err := CompileModel("y = A0 + A1 * x", lineParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"A0", "A1"}, m.Compiled().Params())
}

func TestCompileModel_FixedParameterBecomesConstant(t *testing.T) {
	params := model.ParamSet{
		model.NewParam("A0", 2, true),
		model.NewParam("offset", 10, false),
	}
	m, err := CompileModel("y = A0 * x + offset", params)
	require.NoError(t, err)

	out := m.Evaluate([]float64{0, 1}, []float64{2})
	assert.Equal(t, []float64{10, 12}, out)
}

func TestCompileModel_BadFormula(t *testing.T) {
	_, err := CompileModel("y = A0 * (", lineParams())
	require.Error(t, err)

	var cerr *expr.CompileError
	require.ErrorAs(t, err, &cerr)
}

func TestFitLeastSquares_RecoversLine(t *testing.T) {
	m, err := CompileModel("y = A0 + A1 * x", lineParams())
	require.NoError(t, err)

	ds := lineDataSet()
	report, err := FitLeastSquares(ds, m)
	require.NoError(t, err)
	assert.True(t, report.Success)

	a0, _ := m.Params().Lookup("A0")
	a1, _ := m.Params().Lookup("A1")
	assert.InDelta(t, 2.0, a0.Value, 1e-6)
	assert.InDelta(t, 3.0, a1.Value, 1e-6)
	assert.Len(t, ds.Resid, ds.Len())
}

func TestSearches_ImproveChiSquare(t *testing.T) {
	ds := lineDataSet()

	m, err := CompileModel("y = A0 + A1 * x", model.ParamSet{
		model.NewParam("A0", 40, true),
		model.NewParam("A1", -7, true),
	})
	require.NoError(t, err)

	res, err := SearchStochastic(ds, m)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.ChiSquare, res.StartChiSquare)

	res, err = SearchGrid(ds, m)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.ChiSquare, res.StartChiSquare)
}

func TestSimulateCurve(t *testing.T) {
	m, err := CompileModel("y = A0 + A1 * x", lineParams())
	require.NoError(t, err)

	xs, ys := SimulateCurve(m, 0, 1, 11)
	require.Len(t, xs, 11)
	require.Len(t, ys, 11)
	assert.InDelta(t, 1.0, ys[0], 1e-12)
	assert.InDelta(t, 2.0, ys[10], 1e-12)
}

func TestSnapshot_SaveLoad(t *testing.T) {
	m, err := CompileModel("y = A0 + A1 * x", lineParams())
	require.NoError(t, err)
	ds := lineDataSet()

	var buf bytes.Buffer
	require.NoError(t, SaveSnapshot(&buf, m, ds, prefs.Default()))

	restored, gotDS, err := LoadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Compiled().Source(), restored.Compiled().Source())
	assert.Equal(t, ds.X, gotDS.X)
	assert.Equal(t, ds.Y, gotDS.Y)
	assert.Empty(t, gotDS.Resid)
}
