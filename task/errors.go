package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotRegistered is wrapped by registry errors for unknown task ids.
// Test with errors.Is; the wrapping error names the id that was asked for.
var ErrNotRegistered = errors.New("task not registered")

// CircularDependencyError is returned by ResolveDependencies when the
// dependency graph has a cycle. Remaining lists, sorted, the task ids that
// could not be ordered: the cycle members plus everything that depends on
// them.
type CircularDependencyError struct {
	Remaining []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency involving tasks: %s", strings.Join(e.Remaining, ", "))
}
