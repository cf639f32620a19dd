package fit

import "fmt"

// InsufficientDataError reports a fit attempted with fewer data rows than
// free parameters, or with no free parameter at all.
type InsufficientDataError struct {
	Rows       int
	FreeParams int
}

func (e *InsufficientDataError) Error() string {
	if e.FreeParams == 0 {
		return "fit requires at least one free parameter"
	}

	return fmt.Sprintf("fit requires at least %d data rows for %d free parameters, got %d",
		e.FreeParams, e.FreeParams, e.Rows)
}

// NumericDegeneracyError reports a singular covariance matrix or non-finite
// confidence estimates. It is attached to the report as a warning, not
// raised: the fitted values remain usable, only the confidences become
// undefined.
type NumericDegeneracyError struct {
	Msg string
}

func (e *NumericDegeneracyError) Error() string {
	return "numeric degeneracy: " + e.Msg
}
