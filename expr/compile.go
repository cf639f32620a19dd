package expr

import (
	"fmt"

	"github.com/sametz/fit-o-mat/internal/options"
)

const (
	// DefaultValidationPoints is the size of the linspace used for the
	// shape-validation call after parsing.
	DefaultValidationPoints = 2000

	defaultDepVar    = "y"
	defaultDomainMin = 0.0
	defaultDomainMax = 1.0
)

type config struct {
	depVar    string
	consts    map[string]float64
	extraVars []string
	domainMin float64
	domainMax float64
	domainN   int
}

// Option configures Compile.
type Option = options.Option[*config]

// WithDepVar sets the dependent variable the formula must end by assigning.
// The default is "y"; axis transforms compile with "x" or "y" depending on
// which axis they remap.
func WithDepVar(name string) Option {
	return options.New(func(cfg *config) error {
		if name == "" {
			return fmt.Errorf("dependent variable name cannot be empty")
		}
		cfg.depVar = name

		return nil
	})
}

// WithConst binds a fixed (non-free) parameter as a named constant. This is
// the preamble substitution for parameters held constant during a fit.
func WithConst(name string, val float64) Option {
	return options.NoError(func(cfg *config) {
		if cfg.consts == nil {
			cfg.consts = make(map[string]float64)
		}
		cfg.consts[name] = val
	})
}

// WithVars declares additional vector variables available inside the formula
// besides x. Axis transforms use this to expose the y column. During the
// shape-validation call every extra variable is bound to the probe vector.
func WithVars(names ...string) Option {
	return options.New(func(cfg *config) error {
		for _, name := range names {
			if !isIdentName(name) {
				return fmt.Errorf("invalid variable name %q", name)
			}
		}
		cfg.extraVars = append(cfg.extraVars, names...)

		return nil
	})
}

// WithDomain sets the display domain used by the shape-validation call.
func WithDomain(min, max float64, n int) Option {
	return options.New(func(cfg *config) error {
		if n < 2 {
			return fmt.Errorf("validation domain needs at least 2 points, got %d", n)
		}
		if min >= max {
			return fmt.Errorf("invalid validation domain [%g, %g]", min, max)
		}
		cfg.domainMin, cfg.domainMax, cfg.domainN = min, max, n

		return nil
	})
}

// Compiled is an immutable compiled formula. Eval maps an x vector and
// positional free-parameter values to an output vector of the same length.
type Compiled struct {
	src       string
	decl      string
	depVar    string
	params    []string
	extraVars []string
	consts    map[string]float64
	prog      []stmt
}

// Compile builds a callable from formula source and a comma-separated
// declaration of free parameter names. trial supplies one value per declared
// parameter for the shape-validation call.
//
// Returns *CompileError if src does not parse as a statement sequence ending
// in an assignment to the dependent variable, and *EvaluationError if the
// parsed formula fails or produces a non-vector output when evaluated across
// the display domain with the trial values.
func Compile(src, decl string, trial []float64, opts ...Option) (*Compiled, error) {
	cfg := &config{
		depVar:    defaultDepVar,
		domainMin: defaultDomainMin,
		domainMax: defaultDomainMax,
		domainN:   DefaultValidationPoints,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	params := splitDecl(decl)
	for _, name := range params {
		if !isIdentName(name) {
			return nil, &CompileError{Msg: fmt.Sprintf("invalid parameter name %q", name)}
		}
	}
	if len(trial) != len(params) {
		return nil, &CompileError{
			Msg: fmt.Sprintf("declared %d parameter(s) but got %d trial value(s)", len(params), len(trial)),
		}
	}

	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	prog, err := parseProgram(toks)
	if err != nil {
		return nil, err
	}
	if last := prog[len(prog)-1]; last.target != cfg.depVar {
		return nil, &CompileError{
			Msg: fmt.Sprintf("formula must end with an assignment to %q, ends with %q", cfg.depVar, last.target),
		}
	}

	consts := make(map[string]float64, len(cfg.consts))
	for name, val := range cfg.consts {
		consts[name] = val
	}
	c := &Compiled{
		src:       src,
		decl:      decl,
		depVar:    cfg.depVar,
		params:    params,
		extraVars: cfg.extraVars,
		consts:    consts,
		prog:      prog,
	}

	// Shape-validation call across the display domain. This is what turns
	// "y = A0" style scalar formulas into a compile-time rejection instead
	// of a simulate-time surprise.
	probe := Linspace(cfg.domainMin, cfg.domainMax, cfg.domainN)
	vars := map[string][]float64{"x": probe}
	for _, name := range cfg.extraVars {
		vars[name] = probe
	}
	out, err := c.EvalWith(vars, trial...)
	if err != nil {
		return nil, &EvaluationError{Msg: "validation call failed", Err: err}
	}
	if len(out) != len(probe) {
		return nil, &EvaluationError{
			Msg: fmt.Sprintf("output length %d does not match input length %d", len(out), len(probe)),
		}
	}

	return c, nil
}

// Eval evaluates the compiled formula over x with the given free-parameter
// values, in declaration order. The returned slice is freshly allocated.
func (c *Compiled) Eval(x []float64, free ...float64) ([]float64, error) {
	return c.EvalWith(map[string][]float64{"x": x}, free...)
}

// EvalWith evaluates the formula with named vector variables bound in the
// environment. All vectors must share one length; the result has that length.
// Axis transforms use this to bind both x and y columns.
func (c *Compiled) EvalWith(vars map[string][]float64, free ...float64) ([]float64, error) {
	if len(free) != len(c.params) {
		return nil, fmt.Errorf("formula has %d free parameter(s), got %d value(s)", len(c.params), len(free))
	}
	width := -1
	for name, vec := range vars {
		if width >= 0 && len(vec) != width {
			return nil, fmt.Errorf("variable %q has length %d, want %d", name, len(vec), width)
		}
		width = len(vec)
	}
	if width < 0 {
		return nil, fmt.Errorf("no input vectors bound")
	}

	env := make(environ, len(c.consts)+len(c.params)+len(constants)+len(vars))
	for name, val := range constants {
		env[name] = scalarValue(val)
	}
	for name, val := range c.consts {
		env[name] = scalarValue(val)
	}
	// Positional binding in declaration order; a duplicated name keeps the
	// last value (last declared wins, see ParamSet.Lookup).
	for i, name := range c.params {
		env[name] = scalarValue(free[i])
	}
	for name, vec := range vars {
		env[name] = vecValue(vec)
	}

	for _, s := range c.prog {
		v, err := s.expr.eval(env)
		if err != nil {
			return nil, err
		}
		env[s.target] = v
	}

	result := env[c.depVar]
	if !result.isVec() {
		return nil, fmt.Errorf("formula yields a scalar, not a curve over x")
	}
	out := make([]float64, len(result.vec))
	copy(out, result.vec)

	return out, nil
}

// Source returns the original formula text.
func (c *Compiled) Source() string { return c.src }

// Decl returns the original parameter declaration string.
func (c *Compiled) Decl() string { return c.decl }

// Params returns the free parameter names in declaration order.
func (c *Compiled) Params() []string { return c.params }

// DepVar returns the dependent variable name.
func (c *Compiled) DepVar() string { return c.depVar }

// NumParams returns the number of free parameters.
func (c *Compiled) NumParams() int { return len(c.params) }

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = min

		return out
	}
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max

	return out
}

func isIdentName(name string) bool {
	if name == "" || !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return false
		}
	}

	return true
}
