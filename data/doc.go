// Package data holds the engine's dataset representation and the
// preprocessing pipeline that turns a raw tabular selection into a clean
// DataSet.
//
// The pipeline runs in fixed stages: role mapping, error-model assignment,
// data reduction (skip, block average, moving average, logarithmic
// rebinning), optional per-axis formula transforms with numerically
// propagated uncertainty, and a final sweep that drops rows with non-finite
// values. Each Process call builds a fresh DataSet; nothing is mutated in
// place except the fit-derived FVal/Resid columns.
package data
