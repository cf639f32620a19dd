package optimize

import "sync/atomic"

// Cancel is the shared cooperative cancellation flag. The engine checks it
// only at yield points inside optimizer inner loops; between yields,
// operations run to completion. The flag is atomic so a host may set it from
// outside the engine's thread.
type Cancel struct {
	flag atomic.Bool
}

// NewCancel returns an unset cancellation token.
func NewCancel() *Cancel { return &Cancel{} }

// Cancel requests a stop at the next yield point.
func (c *Cancel) Cancel() { c.flag.Store(true) }

// Cancelled reports whether a stop was requested.
func (c *Cancel) Cancelled() bool { return c.flag.Load() }

// Progress is handed to the yield callback after each batch of evaluations.
type Progress struct {
	// Cycle is the zero-based macro cycle index.
	Cycle int
	// Evaluations counts objective evaluations so far, across cycles.
	Evaluations int
	// BestChiSquare is the lowest chi-square seen so far.
	BestChiSquare float64
}

// ProgressFunc receives Progress records at yield points.
type ProgressFunc func(Progress)
