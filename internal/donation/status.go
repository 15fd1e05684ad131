package donation

import "errors"

// Status is the donation payment state. pending is the only non-terminal
// state; succeeded, canceled and failed are absorbing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

// ErrInvalidTransition indicates an attempt to move a donation out of a
// terminal state or into an unknown one.
var ErrInvalidTransition = errors.New("invalid donation status transition")

var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusSucceeded: true,
		StatusCanceled:  true,
		StatusFailed:    true,
	},
}

// Terminal reports whether no further transition may leave this state.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusCanceled, StatusFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// ParseStatus maps a provider status string onto the closed enum. The second
// return value is false for statuses we do not recognize.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusSucceeded, StatusCanceled, StatusFailed:
		return Status(raw), true
	default:
		return "", false
	}
}
