package fit

import (
	"fmt"
	"math"
	"strings"

	"github.com/sametz/fit-o-mat/model"
)

// Report is the write-once outcome of a least-squares fit, consumed by the
// display layer.
type Report struct {
	// Success is false when the solver failed to converge; the parameter
	// snapshot then still holds the seed values.
	Success bool
	// DoF is rows minus free parameters; may be <= 0.
	DoF int
	// ChiSquare is the sum of squared, uncertainty-weighted residuals.
	ChiSquare float64
	// ReducedChiSquare is ChiSquare/DoF, or +Inf when DoF <= 0.
	ReducedChiSquare float64
	// Params is a snapshot of the full parameter vector after the fit.
	Params model.ParamSet
	// Warnings collects non-fatal degradations (bad errors replaced,
	// non-convergence, degenerate covariance).
	Warnings []string
}

// Format renders the human-readable fit report block.
func (r *Report) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "degrees of freedom: %d\n", r.DoF)
	fmt.Fprintf(&b, "chi square: %g\n", r.ChiSquare)
	if math.IsInf(r.ReducedChiSquare, 1) {
		b.WriteString("reduced chi square: infinite\n")
	} else {
		fmt.Fprintf(&b, "reduced chi square: %g\n", r.ReducedChiSquare)
	}

	b.WriteString("\nparameters:\n")
	for _, p := range r.Params {
		switch {
		case !p.Free:
			fmt.Fprintf(&b, "  %s = %g (fixed)\n", p.Name, p.Value)
		case p.HasConfidence():
			fmt.Fprintf(&b, "  %s = %g +/- %g\n", p.Name, p.Value, p.Confidence)
		default:
			fmt.Fprintf(&b, "  %s = %g +/- undefined\n", p.Name, p.Value)
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s", w)
	}

	return b.String()
}
