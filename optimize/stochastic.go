package optimize

import (
	"math"
	"math/rand/v2"

	"github.com/sametz/fit-o-mat/data"
	"github.com/sametz/fit-o-mat/fit"
	"github.com/sametz/fit-o-mat/internal/options"
	"github.com/sametz/fit-o-mat/model"
)

const (
	// DefaultCycles is the macro cycle count for both searches.
	DefaultCycles = 5
	// DefaultStallLimit ends a stochastic cycle after this many consecutive
	// rejected draws.
	DefaultStallLimit = 10000
	// EscalationFactor grows the search amplitude on each later cycle.
	EscalationFactor = 1.8

	// sensitivityEps is the relative step for one-sided sensitivity probes.
	sensitivityEps = 0.005

	defaultBatchSize = 500
)

// StochasticSearch improves the model's free parameters by sensitivity-
// guided random perturbation. Each macro cycle starts from the best point
// found so far with the base amplitude escalated by EscalationFactor^cycle;
// within a cycle, all free parameters are drawn simultaneously and a draw is
// kept only when it strictly decreases chi-square. Sensitivities are
// recomputed after every accepted improvement.
//
// The model's free parameters are updated to the best point found. The
// search yields Progress after each evaluation batch and stops early at a
// cancellation checkpoint, returning partial progress.
func StochasticSearch(ds *data.DataSet, m *model.Model, opts ...Option) (*Result, error) {
	cfg := defaultSearchConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	params := m.Params()
	n := params.FreeCount()
	if n == 0 {
		return nil, &fit.InsufficientDataError{Rows: ds.Len(), FreeParams: 0}
	}

	rng := newRNG(cfg)
	obj := objective(ds, m)
	yl := &yielder{cfg: cfg}

	best := params.FreeValues()
	bestChi := obj(best)
	res := &Result{StartChiSquare: bestChi, Evaluations: 1}

	p := append([]float64(nil), best...)
	cand := make([]float64, n)

cycles:
	for cycle := range cfg.cycles {
		escalation := math.Pow(EscalationFactor, float64(cycle))
		copy(p, best)
		chi := bestChi
		amp := amplitudes(obj, p, chi, &res.Evaluations)

		fails := 0
		for fails < cfg.stallLimit {
			for i := range cand {
				cand[i] = p[i] + amp[i]*escalation*(0.33-rng.Float64())
			}
			c := obj(cand)
			res.Evaluations++

			if c < chi {
				copy(p, cand)
				chi = c
				fails = 0
				if chi < bestChi {
					copy(best, p)
					bestChi = chi
				}
				amp = amplitudes(obj, p, chi, &res.Evaluations)
			} else {
				fails++
			}

			if yl.yield(1, cycle, res.Evaluations, bestChi) {
				res.Cancelled = true

				break cycles
			}
		}
	}

	res.Params = best
	res.ChiSquare = bestChi
	if err := params.SetFreeValues(best); err != nil {
		return nil, err
	}

	return res, nil
}

// amplitudes derives per-parameter search amplitudes from one-sided
// finite-difference sensitivities of chi-square: the less sensitive a
// parameter, the wider its search radius. Amplitudes are sign-safe and
// normalized so the largest is 0.5.
func amplitudes(obj func([]float64) float64, p []float64, chi float64, evals *int) []float64 {
	amp := make([]float64, len(p))
	probe := append([]float64(nil), p...)
	maxAmp := 0.0
	for i := range p {
		h := sensitivityEps * math.Abs(p[i])
		if h == 0 {
			h = sensitivityEps
		}
		probe[i] = p[i] + h
		delta := math.Abs(obj(probe) - chi)
		*evals++
		probe[i] = p[i]

		if delta > 0 && !math.IsInf(delta, 0) {
			amp[i] = h / delta
		} else {
			amp[i] = 1
		}
		if amp[i] > maxAmp {
			maxAmp = amp[i]
		}
	}
	if maxAmp > 0 {
		for i := range amp {
			amp[i] *= 0.5 / maxAmp
		}
	}

	return amp
}

func newRNG(cfg *searchConfig) *rand.Rand {
	if cfg.seeded {
		return rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	}

	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
