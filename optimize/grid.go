package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/fit"
	"github.com/sametz/fit-o-mat/internal/options"
	"github.com/sametz/fit-o-mat/model"
)

const (
	// DefaultBudget caps objective evaluations per grid cycle.
	DefaultBudget = 10000

	// gridSpan bounds the multiplicative factors: the positive half of each
	// parameter's grid is log-spaced in [1/gridSpan, gridSpan].
	gridSpan = 4.0
)

// GridSearch improves the model's free parameters with a deterministic
// multiplicative grid sweep. Each free parameter gets a log-spaced grid of
// factors around 1.0 plus a sign-reflected negative half, sized so the full
// Cartesian product stays within the evaluation budget. The product is
// iterated with an odometer; any strict chi-square improvement is accepted
// immediately and rebases the grid at the improved point. Macro cycles
// restart the sweep around the best point; an improvement-free full cycle
// ends the search early.
//
// Cooperative yield and cancellation follow the same contract as
// StochasticSearch.
func GridSearch(ds *data.DataSet, m *model.Model, opts ...Option) (*Result, error) {
	cfg := defaultSearchConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	params := m.Params()
	n := params.FreeCount()
	if n == 0 {
		return nil, &fit.InsufficientDataError{Rows: ds.Len(), FreeParams: 0}
	}

	obj := objective(ds, m)
	yl := &yielder{cfg: cfg}

	best := params.FreeValues()
	bestChi := obj(best)
	res := &Result{StartChiSquare: bestChi, Evaluations: 1}

	factors := gridFactors(n, cfg.budget)
	cand := make([]float64, n)

cycles:
	for cycle := range cfg.cycles {
		base := append([]float64(nil), best...)
		improved := false

		idx := make([]int, n) // odometer counters
		cycleEvals := 0
		for cycleEvals < cfg.budget {
			for i := range cand {
				cand[i] = base[i] * factors[idx[i]]
			}
			c := obj(cand)
			cycleEvals++
			res.Evaluations++

			if c < bestChi {
				copy(best, cand)
				bestChi = c
				improved = true
				// rebase and restart the sweep around the better point
				copy(base, best)
				for i := range idx {
					idx[i] = 0
				}
			} else if !advance(idx, len(factors)) {
				break // grid exhausted without improvement since last rebase
			}

			if yl.yield(1, cycle, res.Evaluations, bestChi) {
				res.Cancelled = true

				break cycles
			}
		}

		if !improved {
			break // a full improvement-free cycle ends the search
		}
	}

	res.Params = best
	res.ChiSquare = bestChi
	if err := params.SetFreeValues(best); err != nil {
		return nil, err
	}

	return res, nil
}

// advance increments the odometer: the innermost counter that is not yet
// exhausted ticks up and everything inner resets. Returns false when the
// whole grid has been swept.
func advance(idx []int, size int) bool {
	for i := range idx {
		idx[i]++
		if idx[i] < size {
			return true
		}
		idx[i] = 0
	}

	return false
}

// gridFactors builds the shared factor list: an even number of positive
// factors log-spaced in [1/gridSpan, gridSpan] plus their negations, sized
// so the Cartesian product over n parameters stays within budget.
func gridFactors(n, budget int) []float64 {
	perParam := int(math.Floor(math.Pow(float64(budget), 1/float64(n))))
	if perParam%2 != 0 {
		perParam--
	}
	if perParam < 2 {
		perParam = 2
	}

	half := perParam / 2
	factors := make([]float64, half, perParam)
	if half == 1 {
		factors[0] = gridSpan
	} else {
		floats.LogSpan(factors, 1/gridSpan, gridSpan)
	}
	for _, f := range factors[:half] {
		factors = append(factors, -f)
	}

	return factors
}
