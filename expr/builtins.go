package expr

import "math"

type builtin struct {
	arity int
	fn    func(args []float64) float64
}

// builtins is the fixed symbol table available unqualified inside formulas.
// It is the only namespace the evaluator consults for calls; there is no
// ambient global scope.
var builtins = map[string]builtin{
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"acos":  {1, func(a []float64) float64 { return math.Acos(a[0]) }},
	"asin":  {1, func(a []float64) float64 { return math.Asin(a[0]) }},
	"atan":  {1, func(a []float64) float64 { return math.Atan(a[0]) }},
	"atan2": {2, func(a []float64) float64 { return math.Atan2(a[0], a[1]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"cosh":  {1, func(a []float64) float64 { return math.Cosh(a[0]) }},
	"exp":   {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ln":    {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"log":   {1, func(a []float64) float64 { return math.Log(a[0]) }}, // natural log, numpy convention
	"log2":  {1, func(a []float64) float64 { return math.Log2(a[0]) }},
	"log10": {1, func(a []float64) float64 { return math.Log10(a[0]) }},
	"max":   {2, func(a []float64) float64 { return math.Max(a[0], a[1]) }},
	"min":   {2, func(a []float64) float64 { return math.Min(a[0], a[1]) }},
	"mod":   {2, func(a []float64) float64 { return math.Mod(a[0], a[1]) }},
	"pow":   {2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"sinh":  {1, func(a []float64) float64 { return math.Sinh(a[0]) }},
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"tan":   {1, func(a []float64) float64 { return math.Tan(a[0]) }},
	"tanh":  {1, func(a []float64) float64 { return math.Tanh(a[0]) }},
}

// constants are pre-bound names in every evaluation environment.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}
