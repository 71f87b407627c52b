// Package form drives the robot order form for one order at a time.
//
// The Driver walks an explicit state machine:
//
//	Idle -> ModalChecked -> FormFilled -> Previewed -> Submitted -> Reset
//
// Begin returns the driver to Idle from any state, which is how a retry restarts an
// order from scratch. Calling a step out of order returns a *TransitionError.
//
// Every step reports its own result. DismissModal is best effort and returns a
// tri-state ModalResult instead of an error; the other steps return a *StepError that
// matches ErrTimeout when a bounded wait ran out.
package form
