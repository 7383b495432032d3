package pipeline

import (
	"errors"
	"fmt"
)

// NotIdentifiableError reports that no identification strategy (backdoor,
// frontdoor, instrument) applies to the treatment/outcome pair under the
// current graph.
type NotIdentifiableError struct {
	Treatment string
	Outcome   string
	Reason    string
}

func (e *NotIdentifiableError) Error() string {
	return fmt.Sprintf("pipeline: effect of %q on %q is not identifiable: %s",
		e.Treatment, e.Outcome, e.Reason)
}

// IsNotIdentifiable reports whether err is a NotIdentifiableError.
func IsNotIdentifiable(err error) bool {
	var target *NotIdentifiableError
	return errors.As(err, &target)
}

// StateError reports an operation invoked out of lifecycle order, such as
// Refute before Estimate.
type StateError struct {
	Op       string
	State    State
	Required State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("pipeline: %s requires state %s, orchestrator is %s",
		e.Op, e.Required, e.State)
}

// IsState reports whether err is a StateError.
func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}
