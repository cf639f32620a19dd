// Package optimize provides the two derivative-free fallback searches for
// formulas poorly conditioned for gradient descent: a sensitivity-guided
// stochastic perturbation search and a deterministic multiplicative grid
// sweep.
//
// Both searches are greedy: a draw is accepted immediately and irrevocably
// when it strictly decreases chi-square, so the objective is monotonically
// non-increasing. Both run a fixed number of macro cycles restarted from the
// best point found so far, and both honor the engine's cooperative
// concurrency contract: they run synchronously on the caller's thread and
// yield a Progress record after each batch of evaluations, at which point a
// shared cancellation flag is checked. Cancellation keeps partial progress;
// the best parameters found so far are returned, never an error.
package optimize
