package stats

import (
	"errors"
	"fmt"
)

// InsufficientDataError reports that a routine was given fewer observations
// than it needs to produce a defensible answer.
type InsufficientDataError struct {
	// Op names the failing routine (e.g. "logistic", "ols", "fold").
	Op string

	// Need and Got are the required and supplied observation counts.
	Need, Got int
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("stats: %s: insufficient data: need >= %d observations, got %d",
		e.Op, e.Need, e.Got)
}

// IsInsufficientData returns true if err is (or wraps) an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var ie *InsufficientDataError
	return errors.As(err, &ie)
}
