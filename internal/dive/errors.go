package dive

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a plan the engine refuses to simulate
	ErrConfiguration = errors.New("invalid dive plan configuration")

	// ErrNotConverged marks a run that hit the step limit without surfacing
	ErrNotConverged = errors.New("simulation did not converge")
)

// RunError describes where a run was aborted. Phase is the state the run was in
// before it moved to PhaseError. It wraps ErrConfiguration or ErrNotConverged.
type RunError struct {
	Kind    error
	Phase   Phase
	Steps   int
	Runtime float64
	Err     error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("%v in phase %s after %d steps at runtime %.0f s", e.Kind, e.Phase, e.Steps, e.Runtime)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is
func (e *RunError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
