package polysolve

import (
	"context"
	"errors"
)

// Error taxonomy. Malformed input is reported eagerly at the API boundary;
// heuristic give-up is never an error (routines return the original input or
// an empty solution set instead). Cancellation travels as context errors and
// is the one failure that must cross every layer unchanged.
var (
	// ErrNotPolynomial is returned when an expression cannot be decomposed
	// into integer-power coefficient buckets for its variable.
	ErrNotPolynomial = errors.New("polysolve: expression is not a polynomial")

	// ErrNoConvergence is raised when the multivariate division loop exceeds
	// its iteration cap. The leading-term heuristic has no termination proof;
	// the cap turns a hang into a detectable failure.
	ErrNoConvergence = errors.New("polysolve: division did not converge")

	// ErrDegreeTooLarge is returned for numeric root finding beyond degree 100.
	ErrDegreeTooLarge = errors.New("polysolve: polynomial degree exceeds 100")

	// ErrDivisionByZero covers singular coefficient matrices and undefined
	// slopes in the substitution solver.
	ErrDivisionByZero = errors.New("polysolve: division by zero")

	// ErrInconsistentEquation is returned by NewEquation for two distinct
	// constants asserted equal.
	ErrInconsistentEquation = errors.New("polysolve: equation asserts unequal constants are equal")

	// ErrMissingVariable is returned when an operation needs a variable name
	// and none was given or inferable.
	ErrMissingVariable = errors.New("polysolve: variable name required")
)

// isCancel reports whether err is an external cancellation rather than an
// algorithmic failure. Cancellation must propagate; everything else may be
// swallowed by the give-up fallbacks.
func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
