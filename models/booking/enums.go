package booking

import "fmt"

// Status is shared by bookings and the roster slots derived from them.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusRejected  Status = "Rejected"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// ErrTransition is returned for a move the state machine does not allow.
type ErrTransition struct {
	From, To Status
}

func (e ErrTransition) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo returns ErrTransition when next is not reachable from s.
func (s Status) CanTransitionTo(next Status) error {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return nil
		}
	}
	return ErrTransition{From: s, To: next}
}

// IsDecision reports whether an organizer may set s on a booking.
func (s Status) IsDecision() bool {
	switch s {
	case StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func GetAllStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled}
}
