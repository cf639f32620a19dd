package model

import (
	"fmt"
	"math"
	"strings"
)

// ConfidenceUndefined is the sentinel confidence for parameters that have
// not been (or could not be) estimated by a least-squares fit.
func ConfidenceUndefined() float64 { return math.NaN() }

// Param is one declared model parameter. Confidence stays undefined until a
// least-squares fit succeeds; optimizers never touch it.
type Param struct {
	Name       string
	Value      float64
	Free       bool
	Confidence float64
}

// HasConfidence reports whether a fit has produced a defined confidence.
func (p Param) HasConfidence() bool {
	return !math.IsNaN(p.Confidence)
}

// NewParam returns a parameter with undefined confidence.
func NewParam(name string, value float64, free bool) Param {
	return Param{Name: name, Value: value, Free: free, Confidence: ConfidenceUndefined()}
}

// ParamSet is the ordered full parameter vector of a model.
type ParamSet []Param

// Lookup returns the parameter with the given name. Name uniqueness is not
// enforced; on collision the last declared parameter wins, mirroring the
// positional binding order at evaluation time.
func (ps ParamSet) Lookup(name string) (Param, bool) {
	for i := len(ps) - 1; i >= 0; i-- {
		if ps[i].Name == name {
			return ps[i], true
		}
	}

	return Param{}, false
}

// FreeNames returns the names of free parameters in declaration order.
func (ps ParamSet) FreeNames() []string {
	var names []string
	for _, p := range ps {
		if p.Free {
			names = append(names, p.Name)
		}
	}

	return names
}

// FreeValues returns the values of free parameters in declaration order.
func (ps ParamSet) FreeValues() []float64 {
	var vals []float64
	for _, p := range ps {
		if p.Free {
			vals = append(vals, p.Value)
		}
	}

	return vals
}

// FreeCount returns the number of free parameters.
func (ps ParamSet) FreeCount() int {
	n := 0
	for _, p := range ps {
		if p.Free {
			n++
		}
	}

	return n
}

// Decl returns the comma-separated declaration string of free parameter
// names, as the expression compiler expects it.
func (ps ParamSet) Decl() string {
	return strings.Join(ps.FreeNames(), ", ")
}

// SetFreeValues overwrites the free parameter values in declaration order.
func (ps ParamSet) SetFreeValues(vals []float64) error {
	if len(vals) != ps.FreeCount() {
		return fmt.Errorf("got %d values for %d free parameters", len(vals), ps.FreeCount())
	}
	i := 0
	for j := range ps {
		if ps[j].Free {
			ps[j].Value = vals[i]
			i++
		}
	}

	return nil
}

// SetConfidences assigns per-free-parameter confidences in declaration
// order.
func (ps ParamSet) SetConfidences(conf []float64) error {
	if len(conf) != ps.FreeCount() {
		return fmt.Errorf("got %d confidences for %d free parameters", len(conf), ps.FreeCount())
	}
	i := 0
	for j := range ps {
		if ps[j].Free {
			ps[j].Confidence = conf[i]
			i++
		}
	}

	return nil
}

// ClearConfidences resets every confidence to the undefined sentinel.
func (ps ParamSet) ClearConfidences() {
	for j := range ps {
		ps[j].Confidence = ConfidenceUndefined()
	}
}

// Clone returns a deep copy.
func (ps ParamSet) Clone() ParamSet {
	out := make(ParamSet, len(ps))
	copy(out, ps)

	return out
}
