package form

import "fmt"

// State is a position in the per-order form workflow.
type State int

const (
	StateIdle State = iota
	StateModalChecked
	StateFormFilled
	StatePreviewed
	StateSubmitted
	StateReset
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateModalChecked:
		return "modal_checked"
	case StateFormFilled:
		return "form_filled"
	case StatePreviewed:
		return "previewed"
	case StateSubmitted:
		return "submitted"
	case StateReset:
		return "reset"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// transitions lists the forward moves allowed from each state.
// Moving back to StateIdle is always allowed and not listed.
var transitions = map[State]State{
	StateIdle:         StateModalChecked,
	StateModalChecked: StateFormFilled,
	StateFormFilled:   StatePreviewed,
	StatePreviewed:    StateSubmitted,
	StateSubmitted:    StateReset,
}

// CanTransition reports whether the workflow may move from one state to another.
func CanTransition(from, to State) bool {
	if to == StateIdle {
		return true
	}
	next, ok := transitions[from]
	return ok && next == to
}

// ModalOutcome classifies what DismissModal found.
type ModalOutcome int

const (
	// ModalAbsent means no modal was visible; nothing was clicked.
	ModalAbsent ModalOutcome = iota
	// ModalDismissed means the modal was confirmed and disappeared.
	ModalDismissed
	// ModalDismissFailed means the modal could not be checked or closed.
	ModalDismissFailed
)

func (o ModalOutcome) String() string {
	switch o {
	case ModalAbsent:
		return "absent"
	case ModalDismissed:
		return "dismissed"
	case ModalDismissFailed:
		return "dismiss_failed"
	default:
		return fmt.Sprintf("modal_outcome(%d)", int(o))
	}
}

// ModalResult is the result of DismissModal. Err is set only for ModalDismissFailed.
type ModalResult struct {
	Outcome ModalOutcome
	Err     error
}
