package expr

import "fmt"

// CompileError reports formula source that does not parse as a valid
// statement sequence. Pos is the byte offset of the offending token.
type CompileError struct {
	Msg string
	Pos int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("formula compile error at offset %d: %s", e.Pos, e.Msg)
}

// EvaluationError reports a formula that parsed but failed the
// shape-validation call: either evaluation raised a numeric error, or the
// output shape does not match the input x vector.
type EvaluationError struct {
	Msg string
	Err error // underlying evaluation error, if any
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("formula evaluation error: %s: %v", e.Msg, e.Err)
	}

	return fmt.Sprintf("formula evaluation error: %s", e.Msg)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
