package booking

import "github.com/shareit-platform/service-booking/pkg/domain"

// Status is the persisted decision state of a booking.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsValid returns true if the status is one of the three known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the booking has been decided.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Decide returns the status that follows an owner's decision.
// Only WAITING can be decided; a repeated decision fails even if it matches.
func (s Status) Decide(approved bool) (Status, error) {
	next := StatusRejected
	if approved {
		next = StatusApproved
	}

	switch {
	case s == StatusWaiting:
		return next, nil
	case s.IsTerminal():
		return s, ErrAlreadyDecided
	default:
		return s, domain.NewInvalidStateError(string(s), string(next))
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored string to a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", domain.NewInvalidInputError("invalid_status", "invalid booking status: "+s)
	}
	return status, nil
}
