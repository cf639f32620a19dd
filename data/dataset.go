package data

import (
	"fmt"
	"math"
)

// DataSet is an ordered set of observations. X and Y are mandatory and share
// one length; XErr, YErr and Labels are optional and, when present, share
// that length too. FVal and Resid are derived after a fit via SetFVal and
// are empty otherwise.
type DataSet struct {
	X      []float64
	Y      []float64
	XErr   []float64
	YErr   []float64
	Labels []string

	FVal  []float64
	Resid []float64
}

// Len returns the number of rows.
func (ds *DataSet) Len() int { return len(ds.X) }

// HasXErr reports whether an x-error column is present.
func (ds *DataSet) HasXErr() bool { return len(ds.XErr) > 0 }

// HasYErr reports whether a y-error column is present.
func (ds *DataSet) HasYErr() bool { return len(ds.YErr) > 0 }

// Validate checks the column-length invariants.
func (ds *DataSet) Validate() error {
	n := len(ds.X)
	if len(ds.Y) != n {
		return fmt.Errorf("x and y must have equal length: %d vs %d", n, len(ds.Y))
	}
	if ds.HasXErr() && len(ds.XErr) != n {
		return fmt.Errorf("xerr length %d does not match %d rows", len(ds.XErr), n)
	}
	if ds.HasYErr() && len(ds.YErr) != n {
		return fmt.Errorf("yerr length %d does not match %d rows", len(ds.YErr), n)
	}
	if len(ds.Labels) > 0 && len(ds.Labels) != n {
		return fmt.Errorf("labels length %d does not match %d rows", len(ds.Labels), n)
	}

	return nil
}

// SetFVal stores the model values for each row and computes residuals in
// place.
func (ds *DataSet) SetFVal(fval []float64) error {
	if len(fval) != ds.Len() {
		return fmt.Errorf("fval length %d does not match %d rows", len(fval), ds.Len())
	}
	ds.FVal = fval
	ds.Resid = make([]float64, len(fval))
	for i := range fval {
		ds.Resid[i] = ds.Y[i] - fval[i]
	}

	return nil
}

// ClearFit discards fit-derived columns.
func (ds *DataSet) ClearFit() {
	ds.FVal = nil
	ds.Resid = nil
}

// dropRows removes the rows whose indices appear in drop (a set) from every
// present column.
func (ds *DataSet) dropRows(drop map[int]bool) {
	if len(drop) == 0 {
		return
	}
	keepF := func(col []float64) []float64 {
		if len(col) == 0 {
			return col
		}
		out := col[:0]
		for i, v := range col {
			if !drop[i] {
				out = append(out, v)
			}
		}

		return out
	}
	ds.X = keepF(ds.X)
	ds.Y = keepF(ds.Y)
	ds.XErr = keepF(ds.XErr)
	ds.YErr = keepF(ds.YErr)
	if len(ds.Labels) > 0 {
		out := ds.Labels[:0]
		for i, v := range ds.Labels {
			if !drop[i] {
				out = append(out, v)
			}
		}
		ds.Labels = out
	}
}

// dropNonFinite removes rows containing NaN or Inf in any numeric column.
func (ds *DataSet) dropNonFinite() {
	drop := make(map[int]bool)
	mark := func(col []float64) {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				drop[i] = true
			}
		}
	}
	mark(ds.X)
	mark(ds.Y)
	mark(ds.XErr)
	mark(ds.YErr)
	ds.dropRows(drop)
}
