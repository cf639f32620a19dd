package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sametz/fit-o-mat/expr"
)

func decayModel(t *testing.T) *Model {
	t.Helper()
	params := ParamSet{
		NewParam("A0", 1.5, true),
		NewParam("A1", 3.5, true),
		NewParam("k1", 2.0, true),
	}
	compiled, err := expr.Compile("y = A0 + A1*exp(-k1*x)", params.Decl(), params.FreeValues())
	require.NoError(t, err)
	m, err := New(compiled, params)
	require.NoError(t, err)

	return m
}

func TestParamSet_LookupLastWins(t *testing.T) {
	ps := ParamSet{
		NewParam("A0", 1, true),
		NewParam("A0", 7, false),
	}
	p, ok := ps.Lookup("A0")
	require.True(t, ok)
	assert.Equal(t, 7.0, p.Value)

	_, ok = ps.Lookup("missing")
	assert.False(t, ok)
}

func TestParamSet_FreeAccessors(t *testing.T) {
	ps := ParamSet{
		NewParam("A0", 1, true),
		NewParam("off", 5, false),
		NewParam("k1", 2, true),
	}
	assert.Equal(t, []string{"A0", "k1"}, ps.FreeNames())
	assert.Equal(t, []float64{1, 2}, ps.FreeValues())
	assert.Equal(t, 2, ps.FreeCount())
	assert.Equal(t, "A0, k1", ps.Decl())

	require.NoError(t, ps.SetFreeValues([]float64{10, 20}))
	assert.Equal(t, 10.0, ps[0].Value)
	assert.Equal(t, 5.0, ps[1].Value)
	assert.Equal(t, 20.0, ps[2].Value)

	require.Error(t, ps.SetFreeValues([]float64{1}))
}

func TestParamSet_Confidences(t *testing.T) {
	ps := ParamSet{NewParam("A0", 1, true), NewParam("k1", 2, true)}
	assert.False(t, ps[0].HasConfidence())

	require.NoError(t, ps.SetConfidences([]float64{0.1, 0.2}))
	assert.True(t, ps[0].HasConfidence())
	assert.Equal(t, 0.2, ps[1].Confidence)

	ps.ClearConfidences()
	assert.False(t, ps[0].HasConfidence())
	assert.False(t, ps[1].HasConfidence())
}

func TestModel_EvaluateDegradesToZeros(t *testing.T) {
	m := decayModel(t)

	// Wrong arity forces an evaluation error; the model degrades to a zero
	// vector instead of propagating it.
	out := m.Evaluate([]float64{1, 2, 3}, []float64{1})
	assert.Equal(t, []float64{0, 0, 0}, out)
}

func TestModel_Evaluate(t *testing.T) {
	m := decayModel(t)
	out := m.Evaluate([]float64{0}, []float64{1, 2, 3})
	require.Len(t, out, 1)
	assert.InDelta(t, 3.0, out[0], 1e-12)
}

func TestModel_SimulateAndRetire(t *testing.T) {
	m := decayModel(t)
	x := expr.Linspace(0, 1, 50)

	xs, ys := m.Simulate(x)
	require.Len(t, ys, 50)
	assert.InDelta(t, 5.0, ys[0], 1e-12) // A0 + A1 at x=0
	assert.Equal(t, x, xs)

	m.Retire()
	assert.Equal(t, StateRetired, m.State())

	// A retired model ignores the new x and serves the cached curve.
	xs2, ys2 := m.Simulate(expr.Linspace(5, 6, 10))
	assert.Equal(t, xs, xs2)
	assert.Equal(t, ys, ys2)

	m.Activate()
	xs3, _ := m.Simulate(expr.Linspace(5, 6, 10))
	assert.Len(t, xs3, 10)
}

func TestNew_ParameterMismatch(t *testing.T) {
	compiled, err := expr.Compile("y = A0*x", "A0", []float64{1})
	require.NoError(t, err)

	_, err = New(compiled, ParamSet{NewParam("A0", 1, true), NewParam("k1", 2, true)})
	require.Error(t, err)

	_, err = New(compiled, ParamSet{NewParam("k1", 1, true)})
	require.Error(t, err)
}

func TestRegistry_ActivateAndRetire(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Active())

	first, err := r.Activate("y = A0*x", ParamSet{NewParam("A0", 2, true)})
	require.NoError(t, err)
	assert.Same(t, first, r.Active())
	assert.Equal(t, StateActive, first.State())

	second, err := r.Activate("y = k1*x*x", ParamSet{NewParam("k1", 3, true)})
	require.NoError(t, err)
	assert.Same(t, second, r.Active())
	assert.Equal(t, StateRetired, first.State())
	assert.Equal(t, StateActive, second.State())
}

func TestRegistry_CompileFailureKeepsActive(t *testing.T) {
	r := NewRegistry()
	first, err := r.Activate("y = A0*x", ParamSet{NewParam("A0", 2, true)})
	require.NoError(t, err)

	_, err = r.Activate("y = A0*", ParamSet{NewParam("A0", 2, true)})
	require.Error(t, err)
	assert.Same(t, first, r.Active())
	assert.Equal(t, StateActive, first.State())
}

func TestRegistry_CacheReusesCompiledFormula(t *testing.T) {
	r := NewRegistry()
	first, err := r.Activate("y = A0*x", ParamSet{NewParam("A0", 2, true)})
	require.NoError(t, err)

	_, err = r.Activate("y = k1*x", ParamSet{NewParam("k1", 1, true)})
	require.NoError(t, err)

	again, err := r.Activate("y = A0*x", ParamSet{NewParam("A0", 5, true)})
	require.NoError(t, err)
	assert.Same(t, first.Compiled(), again.Compiled())
	assert.Equal(t, 5.0, again.Params()[0].Value)
}

func TestRegistry_FixedParameterPreamble(t *testing.T) {
	r := NewRegistry()
	m, err := r.Activate("y = A0 + k1*x", ParamSet{
		NewParam("A0", 10, false),
		NewParam("k1", 2, true),
	})
	require.NoError(t, err)

	_, ys := m.Simulate([]float64{0, 1})
	assert.InDelta(t, 10.0, ys[0], 1e-12)
	assert.InDelta(t, 12.0, ys[1], 1e-12)
}

func TestConfidenceUndefined(t *testing.T) {
	assert.True(t, math.IsNaN(ConfidenceUndefined()))
}
