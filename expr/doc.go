// Package expr compiles user-supplied formula text into callable numeric
// functions.
//
// A formula is a sequence of assignment statements, separated by newlines or
// semicolons, ending in an assignment to the dependent variable (y by
// default):
//
//	decay = exp(-k1*x)
//	y = A0 + A1*decay
//
// Together with a comma-separated declaration of free parameter names
// ("A0, A1, k1"), Compile produces a *Compiled whose Eval method maps an x
// vector and positional free-parameter values to a y vector. Fixed model
// parameters are bound as constants at compile time; free parameters are
// positional arguments in declaration order.
//
// The compiler is a small tree-walking interpreter: a lexer and Pratt parser
// build a tagged-variant AST, and evaluation walks the tree with a fixed
// symbol table of numeric builtins (abs, trig, exp, log, sqrt, pow, ...).
// No host-language eval facility is involved.
//
// Compilation is strict about shape: after parsing, the candidate function is
// evaluated across the display domain with the supplied trial parameter
// values, and a formula whose output is not a vector matching the input (for
// example "y = A0", which yields a scalar) is rejected with *EvaluationError.
// Malformed source is rejected earlier with *CompileError. A *Compiled is
// immutable once returned, so callers can swap models atomically and keep the
// previous one on failure.
package expr
