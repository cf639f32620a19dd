package data

import (
	"fmt"
	"math"
)

func reduce(ds *DataSet, cfg *procConfig) error {
	switch cfg.reduction {
	case ReductionNone:
		return nil
	case ReductionSkip:
		reduceSkip(ds, cfg.reduceN)
		return nil
	case ReductionAverage:
		reduceBlockAverage(ds, cfg.reduceN)
		return nil
	case ReductionMovingAverage:
		reduceMovingAverage(ds, cfg.reduceN)
		return nil
	case ReductionLogRebin:
		return reduceLogRebin(ds, cfg.targetBins)
	default:
		return fmt.Errorf("unknown reduction mode %d", cfg.reduction)
	}
}

// reduceSkip keeps rows 0, n, 2n, ...
func reduceSkip(ds *DataSet, n int) {
	drop := make(map[int]bool)
	for i := range ds.X {
		if i%n != 0 {
			drop[i] = true
		}
	}
	ds.dropRows(drop)
}

func reduceBlockAverage(ds *DataSet, n int) {
	out := &DataSet{}
	for lo := 0; lo < ds.Len(); lo += n {
		hi := min(lo+n, ds.Len())
		appendBlock(out, ds, lo, hi)
	}
	replaceColumns(ds, out)
}

func reduceMovingAverage(ds *DataSet, window int) {
	out := &DataSet{}
	for lo := 0; lo+window <= ds.Len(); lo++ {
		appendBlock(out, ds, lo, lo+window)
	}
	replaceColumns(ds, out)
}

// reduceLogRebin rebins onto ~bins logarithmically spaced target x
// locations. Bin boundaries are midpoints (in log space) between adjacent
// targets; rows with non-positive x are excluded.
func reduceLogRebin(ds *DataSet, bins int) error {
	var minPos, maxPos float64
	minPos = math.Inf(1)
	for _, x := range ds.X {
		if x > 0 {
			minPos = math.Min(minPos, x)
			maxPos = math.Max(maxPos, x)
		}
	}
	if math.IsInf(minPos, 1) {
		return fmt.Errorf("logarithmic rebinning requires at least one strictly positive x value")
	}

	logMin, logMax := math.Log(minPos), math.Log(maxPos)
	if logMin == logMax {
		// Degenerate span: collapse all positive rows into one bin.
		out := &DataSet{}
		var members []int
		for i, x := range ds.X {
			if x > 0 {
				members = append(members, i)
			}
		}
		appendRows(out, ds, members)
		replaceColumns(ds, out)

		return nil
	}
	if bins < 2 {
		bins = 2
	}
	step := (logMax - logMin) / float64(bins-1)

	// edges[k] and edges[k+1] bound target k; outer edges extend half a step
	// past the first and last targets so every positive row lands in a bin.
	edges := make([]float64, bins+1)
	for k := range edges {
		edges[k] = math.Exp(logMin + (float64(k)-0.5)*step)
	}

	out := &DataSet{}
	for k := 0; k < bins; k++ {
		var members []int
		for i, x := range ds.X {
			if x > 0 && x >= edges[k] && x < edges[k+1] {
				members = append(members, i)
			}
		}
		if len(members) == 0 {
			continue
		}
		appendRows(out, ds, members)
	}
	replaceColumns(ds, out)

	return nil
}

// appendBlock averages rows [lo, hi) of src onto dst.
func appendBlock(dst, src *DataSet, lo, hi int) {
	idx := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		idx = append(idx, i)
	}
	appendRows(dst, src, idx)
}

// appendRows averages the given rows of src into a single row of dst,
// propagating errors in quadrature.
func appendRows(dst, src *DataSet, idx []int) {
	n := float64(len(idx))
	var sx, sy, sxe, sye float64
	for _, i := range idx {
		sx += src.X[i]
		sy += src.Y[i]
		if src.HasXErr() {
			e := src.XErr[i] / n
			sxe += e * e
		}
		if src.HasYErr() {
			e := src.YErr[i] / n
			sye += e * e
		}
	}
	dst.X = append(dst.X, sx/n)
	dst.Y = append(dst.Y, sy/n)
	if src.HasXErr() {
		dst.XErr = append(dst.XErr, math.Sqrt(sxe))
	}
	if src.HasYErr() {
		dst.YErr = append(dst.YErr, math.Sqrt(sye))
	}
	if len(src.Labels) > 0 {
		dst.Labels = append(dst.Labels, src.Labels[idx[0]])
	}
}

func replaceColumns(ds, from *DataSet) {
	ds.X = from.X
	ds.Y = from.Y
	ds.XErr = from.XErr
	ds.YErr = from.YErr
	ds.Labels = from.Labels
}
