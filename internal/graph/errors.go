package graph

import (
	"fmt"
	"strings"
)

// CycleError indicates a target transitively depends on itself. It is
// detected before any action runs.
type CycleError struct {
	// Chain is the dependency chain forming the cycle, first and last
	// elements being the same target.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Chain, " -> "))
}

// UnknownTargetError indicates a prerequisite or requested target name that
// was never registered.
type UnknownTargetError struct {
	Name string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target '%s'", e.Name)
}

// IsConfigurationError reports whether err is a graph configuration error
// (cycle or unknown target). Configuration errors are fatal and abort the
// run before any action executes.
func IsConfigurationError(err error) bool {
	switch err.(type) {
	case *CycleError, *UnknownTargetError:
		return true
	default:
		return false
	}
}
