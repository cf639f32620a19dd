package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EvalMatchesReference(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		decl  string
		free  []float64
		x     []float64
		want  func(x float64) float64
	}{
		{
			name: "exponential decay",
			src:  "y = A0 + A1*exp(-k1*x)",
			decl: "A0, A1, k1",
			free: []float64{1.5, 3.5, 2.0},
			x:    []float64{0, 0.5, 1, 2},
			want: func(x float64) float64 { return 1.5 + 3.5*math.Exp(-2.0*x) },
		},
		{
			name: "multi-statement with intermediate variable",
			src:  "decay = exp(-k1*x)\ny = A0 + A1*decay",
			decl: "A0, A1, k1",
			free: []float64{1, 2, 3},
			x:    []float64{0, 1},
			want: func(x float64) float64 { return 1 + 2*math.Exp(-3*x) },
		},
		{
			name: "power and precedence",
			src:  "y = -x**2 + 2**3*x",
			decl: "",
			free: nil,
			x:    []float64{0, 1, 2, 3},
			want: func(x float64) float64 { return -(x * x) + 8*x },
		},
		{
			name: "builtin constants",
			src:  "y = sin(pi*x) + e*x",
			decl: "",
			free: nil,
			x:    []float64{0, 0.25, 0.5},
			want: func(x float64) float64 { return math.Sin(math.Pi*x) + math.E*x },
		},
		{
			name: "semicolon separators and comments",
			src:  "a = 2*x ; y = a + c # offset by c",
			decl: "c",
			free: []float64{5},
			x:    []float64{1, 2},
			want: func(x float64) float64 { return 2*x + 5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compile(tt.src, tt.decl, tt.free)
			require.NoError(t, err)

			out, err := c.Eval(tt.x, tt.free...)
			require.NoError(t, err)
			require.Len(t, out, len(tt.x))
			for i, x := range tt.x {
				assert.InDelta(t, tt.want(x), out[i], 1e-12, "at x=%g", x)
			}
		})
	}
}

func TestCompile_FixedParameterPreamble(t *testing.T) {
	// A0 held fixed as a constant, only k1 free.
	c, err := Compile("y = A0*exp(-k1*x)", "k1", []float64{1},
		WithConst("A0", 4.0))
	require.NoError(t, err)

	out, err := c.Eval([]float64{0, 1}, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, out[0], 1e-12)
	assert.InDelta(t, 4.0*math.Exp(-0.5), out[1], 1e-12)
}

func TestCompile_RejectsScalarOutput(t *testing.T) {
	// A constant formula yields a scalar: rejected at compile time, not at
	// simulate time.
	_, err := Compile("y = A0", "A0", []float64{1})
	require.Error(t, err)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
}

func TestCompile_CompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		decl string
		free []float64
	}{
		{"empty source", "", "", nil},
		{"missing assignment", "A0 + x", "A0", []float64{1}},
		{"unbalanced paren", "y = exp(-x", "", nil},
		{"wrong dependent variable", "z = 2*x", "", nil},
		{"garbage character", "y = 2$x", "", nil},
		{"assign to builtin", "exp = 2*x\ny = exp", "", nil},
		{"trial count mismatch", "y = A0*x", "A0, A1", []float64{1}},
		{"invalid parameter name", "y = 2*x", "A0, 9bad", []float64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, tt.decl, tt.free)
			require.Error(t, err)

			var compileErr *CompileError
			assert.ErrorAs(t, err, &compileErr)
		})
	}
}

func TestCompile_UnknownNamesFailValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"undefined variable", "y = 2*q*x"},
		{"unknown function", "y = sinc(x)"},
		{"wrong arity", "y = atan2(x)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, "", nil)
			require.Error(t, err)

			var evalErr *EvaluationError
			assert.ErrorAs(t, err, &evalErr)
		})
	}
}

func TestCompile_FailureLeavesNoPartialState(t *testing.T) {
	// Compile returns either a usable *Compiled or nil; callers keep the
	// previous model on error.
	c, err := Compile("y = 2*", "", nil)
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestEval_DuplicateParameterLastWins(t *testing.T) {
	c, err := Compile("y = A0*x", "A0, A0", []float64{1, 3})
	require.NoError(t, err)

	out, err := c.Eval([]float64{2}, 1, 3)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, out[0], 1e-12)
}

func TestEval_ArityMismatch(t *testing.T) {
	c, err := Compile("y = A0*x", "A0", []float64{1})
	require.NoError(t, err)

	_, err = c.Eval([]float64{1, 2}, 1, 2)
	require.Error(t, err)
}

func TestEval_ReturnsFreshSlice(t *testing.T) {
	c, err := Compile("y = x", "", nil)
	require.NoError(t, err)

	x := []float64{1, 2, 3}
	out, err := c.Eval(x)
	require.NoError(t, err)
	out[0] = 99
	assert.Equal(t, 1.0, x[0])
}

func TestCompile_WithDomain(t *testing.T) {
	// log(x) is NaN over the default [0,1] start; a positive domain passes.
	_, err := Compile("y = log(x)*x/x + 0*x", "", nil, WithDomain(1, 10, 100))
	require.NoError(t, err)

	_, err = Compile("y = 2*x", "", nil, WithDomain(5, 1, 100))
	require.Error(t, err)

	_, err = Compile("y = 2*x", "", nil, WithDomain(0, 1, 1))
	require.Error(t, err)
}

func TestCompile_WithDepVar(t *testing.T) {
	c, err := Compile("x = sqrt(x)", "", nil, WithDepVar("x"))
	require.NoError(t, err)

	out, err := c.Eval([]float64{4, 9})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, out)
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	require.Len(t, got, 5)
	assert.Equal(t, 0.0, got[0])
	assert.Equal(t, 1.0, got[4])
	assert.InDelta(t, 0.25, got[1], 1e-15)

	single := Linspace(3, 7, 1)
	assert.Equal(t, []float64{3}, single)
}

func BenchmarkEval(b *testing.B) {
	c, err := Compile("y = A0 + A1*exp(-k1*x)", "A0, A1, k1", []float64{1, 2, 3})
	if err != nil {
		b.Fatal(err)
	}
	x := Linspace(0, 10, 1000)
	b.ResetTimer()
	for b.Loop() {
		if _, err := c.Eval(x, 1, 2, 3); err != nil {
			b.Fatal(err)
		}
	}
}
