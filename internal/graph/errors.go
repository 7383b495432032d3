package graph

import (
	"errors"
	"fmt"
	"strings"
)

// CycleError reports that a requested edge set is not acyclic.
type CycleError struct {
	// Nodes lists nodes known to participate in (or witness) the cycle.
	Nodes []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if len(e.Nodes) == 0 {
		return "graph: directed subgraph contains a cycle"
	}
	return fmt.Sprintf("graph: directed subgraph contains a cycle through [%s]",
		strings.Join(e.Nodes, ", "))
}

// IsCycle returns true if err is (or wraps) a CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}

// UnknownNodeError reports a reference to a node name the graph does not have.
type UnknownNodeError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("graph: unknown node %q", e.Name)
}
