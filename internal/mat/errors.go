package mat

import (
	"errors"
	"fmt"
)

// ShapeError reports a dimension mismatch between operands.
type ShapeError struct {
	Op             string
	RowsA, ColsA   int
	RowsB, ColsB   int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("mat: %s: dimension mismatch %dx%d vs %dx%d",
		e.Op, e.RowsA, e.ColsA, e.RowsB, e.ColsB)
}

// SingularError reports that elimination found no usable pivot, i.e. the
// matrix is singular (or numerically indistinguishable from singular).
type SingularError struct {
	// Column is the elimination column where the pivot vanished.
	Column int

	// Pivot is the magnitude of the best available pivot.
	Pivot float64
}

// Error implements the error interface.
func (e *SingularError) Error() string {
	return fmt.Sprintf("mat: singular matrix: no pivot in column %d (best |pivot|=%.3e)",
		e.Column, e.Pivot)
}

// IsSingular returns true if err is (or wraps) a SingularError.
func IsSingular(err error) bool {
	var se *SingularError
	return errors.As(err, &se)
}
