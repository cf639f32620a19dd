package model

import (
	"fmt"

	"github.com/sametz/fit-o-mat/expr"
)

// State is the lifecycle state of a model in a multi-model session.
type State uint8

const (
	// StateActive marks the model currently driven by fits and simulations.
	StateActive State = iota
	// StateRetired marks a model superseded by another active model; it
	// keeps serving its cached curve but no longer evaluates.
	StateRetired
)

func (s State) String() string {
	if s == StateActive {
		return "Active"
	}

	return "Retired"
}

// Model binds a compiled formula to its full parameter vector.
type Model struct {
	compiled *expr.Compiled
	params   ParamSet
	state    State

	cachedX []float64
	cachedY []float64
}

// New creates an active model. The compiled formula's free parameters must
// match the free parameters of params in count and order.
func New(compiled *expr.Compiled, params ParamSet) (*Model, error) {
	names := params.FreeNames()
	cnames := compiled.Params()
	if len(names) != len(cnames) {
		return nil, fmt.Errorf("compiled formula has %d free parameters, parameter set has %d",
			len(cnames), len(names))
	}
	for i, name := range cnames {
		if names[i] != name {
			return nil, fmt.Errorf("free parameter %d is %q in the formula but %q in the set",
				i, name, names[i])
		}
	}

	return &Model{compiled: compiled, params: params}, nil
}

// Compiled returns the compiled formula.
func (m *Model) Compiled() *expr.Compiled { return m.compiled }

// Params returns the live parameter set. Callers that need a snapshot should
// Clone it; the set is owned by the calling session and concurrent fits must
// be serialized by the caller.
func (m *Model) Params() ParamSet { return m.params }

// State returns the lifecycle state.
func (m *Model) State() State { return m.state }

// Retire marks the model superseded. Simulate keeps returning the cached
// curve; Evaluate is unaffected.
func (m *Model) Retire() { m.state = StateRetired }

// Activate returns the model to active duty.
func (m *Model) Activate() { m.state = StateActive }

// Evaluate runs the formula over x with the given free-parameter override.
// It never mutates model state. A failed evaluation degrades to a zero
// vector so that a single bad parameter draw cannot abort an optimization
// run.
func (m *Model) Evaluate(x []float64, free []float64) []float64 {
	out, err := m.compiled.Eval(x, free...)
	if err != nil {
		return make([]float64, len(x))
	}

	return out
}

// Simulate evaluates the formula over x with the model's own stored values
// and caches the result for dependent plots. On a retired model, evaluation
// is skipped and the previously cached curve is returned unchanged.
func (m *Model) Simulate(x []float64) (xs, ys []float64) {
	if m.state == StateRetired {
		return m.cachedX, m.cachedY
	}
	m.cachedX = x
	m.cachedY = m.Evaluate(x, m.params.FreeValues())

	return m.cachedX, m.cachedY
}
