package optimize

import (
	"fmt"
	"math"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/fit"
	"github.com/sametz/fit-o-mat/internal/options"
	"github.com/sametz/fit-o-mat/model"
)

type searchConfig struct {
	cycles     int
	stallLimit int
	budget     int
	batchSize  int
	seed       uint64
	seeded     bool
	progress   ProgressFunc
	cancel     *Cancel
}

// Option configures StochasticSearch and GridSearch.
type Option = options.Option[*searchConfig]

// WithCycles sets the macro cycle count (default 5).
func WithCycles(n int) Option {
	return options.New(func(cfg *searchConfig) error {
		if n < 1 {
			return fmt.Errorf("cycle count must be positive, got %d", n)
		}
		cfg.cycles = n

		return nil
	})
}

// WithStallLimit sets how many consecutive rejected draws end a stochastic
// cycle (default 10000). Grid search ignores it.
func WithStallLimit(n int) Option {
	return options.New(func(cfg *searchConfig) error {
		if n < 1 {
			return fmt.Errorf("stall limit must be positive, got %d", n)
		}
		cfg.stallLimit = n

		return nil
	})
}

// WithBudget caps objective evaluations per grid cycle (default 10000).
// Stochastic search ignores it.
func WithBudget(n int) Option {
	return options.New(func(cfg *searchConfig) error {
		if n < 1 {
			return fmt.Errorf("evaluation budget must be positive, got %d", n)
		}
		cfg.budget = n

		return nil
	})
}

// WithProgress registers the yield callback invoked after each evaluation
// batch.
func WithProgress(fn ProgressFunc) Option {
	return options.NoError(func(cfg *searchConfig) {
		cfg.progress = fn
	})
}

// WithCancel attaches a shared cancellation token.
func WithCancel(c *Cancel) Option {
	return options.NoError(func(cfg *searchConfig) {
		cfg.cancel = c
	})
}

// WithSeed fixes the stochastic search's random source for reproducibility.
func WithSeed(seed uint64) Option {
	return options.NoError(func(cfg *searchConfig) {
		cfg.seed = seed
		cfg.seeded = true
	})
}

func defaultSearchConfig() *searchConfig {
	return &searchConfig{
		cycles:     DefaultCycles,
		stallLimit: DefaultStallLimit,
		budget:     DefaultBudget,
		batchSize:  defaultBatchSize,
	}
}

// Result is the outcome of a search.
type Result struct {
	// Params holds the best free-parameter values found.
	Params []float64
	// StartChiSquare is the objective at the seed parameters.
	StartChiSquare float64
	// ChiSquare is the objective at Params; never above StartChiSquare.
	ChiSquare float64
	// Evaluations counts objective evaluations performed.
	Evaluations int
	// Cancelled reports whether the search stopped at a cancellation
	// checkpoint rather than running its budgets to completion.
	Cancelled bool
}

// objective builds the chi-square function over the dataset for free
// parameter vectors, weighted with the fitter's sigma rule so search and fit
// agree on chi-square for the same dataset. Evaluation failures inside the
// model already degrade to zero output, so the objective is total.
func objective(ds *data.DataSet, m *model.Model) func(p []float64) float64 {
	sigma, _ := fit.SigmaWeights(ds)

	return func(p []float64) float64 {
		fv := m.Evaluate(ds.X, p)
		var sum float64
		for i := range fv {
			r := (fv[i] - ds.Y[i]) / sigma[i]
			sum += r * r
		}
		if math.IsNaN(sum) {
			return math.Inf(1)
		}

		return sum
	}
}

// yielder batches progress callbacks and cancellation checks.
type yielder struct {
	cfg     *searchConfig
	pending int
}

// yield records n evaluations and, when a batch boundary passes, reports
// progress and checks the cancellation flag. It returns true when the search
// must stop.
func (yl *yielder) yield(n int, cycle, evals int, best float64) bool {
	yl.pending += n
	if yl.pending < yl.cfg.batchSize {
		return false
	}
	yl.pending = 0
	if yl.cfg.progress != nil {
		yl.cfg.progress(Progress{Cycle: cycle, Evaluations: evals, BestChiSquare: best})
	}

	return yl.cfg.cancel != nil && yl.cfg.cancel.Cancelled()
}
