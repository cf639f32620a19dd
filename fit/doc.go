// Package fit wraps a Levenberg-Marquardt least-squares solver and derives
// fit statistics: chi-square, reduced chi-square, and per-parameter
// one-sigma confidences from the covariance matrix.
//
// The fitter degrades gracefully by policy. Solver failure keeps the seed
// parameter values and marks the fit unsuccessful instead of erroring out;
// a singular or non-finite covariance turns every confidence into the
// undefined sentinel rather than crashing. Only structurally impossible fits
// (no free parameters, or fewer rows than free parameters) return an error
// up front.
package fit
