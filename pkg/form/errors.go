package form

import (
	"errors"
	"fmt"
)

// ErrTimeout matches any step error caused by a bounded wait running out.
var ErrTimeout = errors.New("wait timed out")

// Step names used in errors and logs
const (
	StepDismissModal = "dismiss_modal"
	StepFill         = "fill"
	StepPreview      = "preview"
	StepSubmit       = "submit"
	StepOrderAnother = "order_another"
)

// StepError wraps a failure of one form step.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Is reports ErrTimeout for failures whose cause is a timeout.
func (e *StepError) Is(target error) bool {
	return target == ErrTimeout && e.Timeout()
}

// Timeout reports whether the step failed because a wait ran out.
func (e *StepError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// TransitionError is returned when a step is called from the wrong state.
type TransitionError struct {
	Step string
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %s to %s", e.Step, e.From, e.To)
}
