package data

import (
	"fmt"
	"math"

	"github.com/sametz/fit-o-mat/internal/options"
)

// ErrorModel selects how the y-error column is assigned during
// preprocessing.
type ErrorModel uint8

const (
	// ErrorNone leaves the dataset without a y-error column (unless one is
	// adopted via ErrorColumn).
	ErrorNone ErrorModel = iota
	// ErrorConstant assigns a constant absolute error to every row.
	ErrorConstant
	// ErrorPercent assigns a percentage of |y| to every row.
	ErrorPercent
	// ErrorColumn adopts the yerr-tagged table column as-is.
	ErrorColumn
)

// Reduction selects the data-reduction stage.
type Reduction uint8

const (
	ReductionNone Reduction = iota
	// ReductionSkip keeps every Nth row.
	ReductionSkip
	// ReductionAverage block-averages every N consecutive rows.
	ReductionAverage
	// ReductionMovingAverage averages a sliding window of N rows, stride 1.
	ReductionMovingAverage
	// ReductionLogRebin rebins onto ~M logarithmically spaced x bins.
	ReductionLogRebin
)

// Axis names a dataset axis for transforms.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}

	return "y"
}

type transformSpec struct {
	axis Axis
	src  string
}

type procConfig struct {
	errorModel ErrorModel
	errorValue float64
	reduction  Reduction
	reduceN    int
	targetBins int
	transforms []transformSpec
}

// Option configures Process.
type Option = options.Option[*procConfig]

// WithErrorModel sets the error-assignment mode. value is the absolute error
// for ErrorConstant and the percentage for ErrorPercent; it is ignored for
// the other modes.
func WithErrorModel(model ErrorModel, value float64) Option {
	return options.New(func(cfg *procConfig) error {
		if (model == ErrorConstant || model == ErrorPercent) && value <= 0 {
			return fmt.Errorf("error value must be positive, got %g", value)
		}
		cfg.errorModel = model
		cfg.errorValue = value

		return nil
	})
}

// WithReduction sets the reduction stage. n is the row count N for skip,
// block average and moving average, and the target bin count M for
// logarithmic rebinning.
func WithReduction(r Reduction, n int) Option {
	return options.New(func(cfg *procConfig) error {
		if r != ReductionNone && n < 2 {
			return fmt.Errorf("reduction requires n >= 2, got %d", n)
		}
		cfg.reduction = r
		if r == ReductionLogRebin {
			cfg.targetBins = n
		} else {
			cfg.reduceN = n
		}

		return nil
	})
}

// WithTransform appends a formula transform for one axis, applied after
// reduction in the order given. The formula sees both x and y vectors and
// must end with an assignment to the transformed axis, e.g. "y = log(y)" or
// "x = 1/x".
func WithTransform(axis Axis, src string) Option {
	return options.NoError(func(cfg *procConfig) {
		cfg.transforms = append(cfg.transforms, transformSpec{axis: axis, src: src})
	})
}

// Process turns a raw table selection into a clean DataSet: role mapping,
// error assignment, reduction, transforms, then a final drop of rows with
// non-finite values.
func Process(table *Table, opts ...Option) (*DataSet, error) {
	cfg := &procConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	ds, err := mapRoles(table, cfg)
	if err != nil {
		return nil, err
	}
	if err := assignErrors(ds, cfg); err != nil {
		return nil, err
	}
	if err := reduce(ds, cfg); err != nil {
		return nil, err
	}
	for _, spec := range cfg.transforms {
		if err := transformAxis(ds, spec.axis, spec.src); err != nil {
			return nil, err
		}
	}
	ds.dropNonFinite()
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

// mapRoles extracts role-tagged columns into a DataSet, dropping rows where
// x or y is missing or unparseable.
func mapRoles(table *Table, cfg *procConfig) (*DataSet, error) {
	xCol := table.column(RoleX)
	yCol := table.column(RoleY)
	if xCol == nil || yCol == nil {
		return nil, fmt.Errorf("selection must contain both an x and a y column")
	}
	xeCol := table.column(RoleXErr)
	yeCol := table.column(RoleYErr)
	lblCol := table.column(RoleLabel)

	ds := &DataSet{}
	for row := range table.rows() {
		x, okX := parseCell(xCol, row)
		y, okY := parseCell(yCol, row)
		if !okX || !okY {
			continue
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
		if xeCol != nil {
			xe, ok := parseCell(xeCol, row)
			if !ok {
				xe = math.NaN() // dropped by the final non-finite sweep
			}
			ds.XErr = append(ds.XErr, xe)
		}
		if yeCol != nil && cfg.errorModel == ErrorColumn {
			ye, ok := parseCell(yeCol, row)
			if !ok {
				ye = math.NaN()
			}
			ds.YErr = append(ds.YErr, ye)
		}
		if lblCol != nil && row < len(lblCol.Cells) {
			ds.Labels = append(ds.Labels, lblCol.Cells[row])
		} else if lblCol != nil {
			ds.Labels = append(ds.Labels, "")
		}
	}

	return ds, nil
}

func assignErrors(ds *DataSet, cfg *procConfig) error {
	switch cfg.errorModel {
	case ErrorNone:
		// keep dataset without a y-error column
	case ErrorConstant:
		ds.YErr = make([]float64, ds.Len())
		for i := range ds.YErr {
			ds.YErr[i] = cfg.errorValue
		}
	case ErrorPercent:
		if len(ds.Y) == 0 {
			return fmt.Errorf("percentage error model requires a y column with data")
		}
		ds.YErr = make([]float64, ds.Len())
		for i, y := range ds.Y {
			ds.YErr[i] = math.Abs(y) * cfg.errorValue / 100
		}
	case ErrorColumn:
		if !ds.HasYErr() {
			return fmt.Errorf("error model 'use existing column' requires a yerr-tagged column")
		}
	default:
		return fmt.Errorf("unknown error model %d", cfg.errorModel)
	}

	return nil
}
