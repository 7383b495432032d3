package discovery

import (
	"errors"
	"fmt"
)

// ConvergenceError reports that an iterative search ran out of budget before
// meeting its acceptance criterion.
type ConvergenceError struct {
	// Algorithm names the search ("notears").
	Algorithm string

	// Achieved and Required are the final and acceptable constraint values.
	Achieved, Required float64

	// Iterations is the outer-loop budget that was exhausted.
	Iterations int

	// Err carries an underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("discovery: %s failed to converge after %d iterations: constraint %.3e, tolerance %.3e",
		e.Algorithm, e.Iterations, e.Achieved, e.Required)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *ConvergenceError) Unwrap() error { return e.Err }

// IsConvergence returns true if err is (or wraps) a ConvergenceError.
func IsConvergence(err error) bool {
	var ce *ConvergenceError
	return errors.As(err, &ce)
}
