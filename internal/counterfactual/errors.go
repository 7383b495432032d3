package counterfactual

import (
	"errors"
	"fmt"
)

// MissingObservationError reports a node of the model that has no value in
// the observed unit. Abduction needs a complete assignment.
type MissingObservationError struct {
	Node string
}

func (e *MissingObservationError) Error() string {
	return fmt.Sprintf("counterfactual: observed unit has no value for node %q", e.Node)
}

// IsMissingObservation reports whether err is a MissingObservationError.
func IsMissingObservation(err error) bool {
	var target *MissingObservationError
	return errors.As(err, &target)
}
