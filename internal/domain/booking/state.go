package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// State selects a partition of a user's bookings at query time.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// States lists every state in display order.
var States = []State{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseState parses a state token. An empty token means ALL; tokens are case-sensitive.
func ParseState(raw string) (State, error) {
	if raw == "" {
		return StateAll, nil
	}
	s := State(raw)
	for _, known := range States {
		if s == known {
			return s, nil
		}
	}
	return "", domain.NewInvalidInputError("unknown_state", "Unknown state: "+raw)
}

// Role is the perspective from which bookings are listed.
type Role string

const (
	RoleBooker Role = "booker"
	RoleOwner  Role = "owner"
)

// Window restricts bookings by their position relative to Filter.Now.
type Window int

const (
	WindowAny Window = iota
	// WindowCurrent matches start <= now <= end.
	WindowCurrent
	// WindowPast matches end < now.
	WindowPast
	// WindowFuture matches start > now.
	WindowFuture
)

// Filter is a storage-agnostic booking predicate. Zero-valued fields do not restrict.
type Filter struct {
	BookerID uuid.UUID
	// OwnerID restricts to items owned by this user; repositories resolve the join.
	OwnerID uuid.UUID
	// ItemScoped restricts to ItemIDs, which may then be empty and match nothing.
	ItemScoped bool
	ItemIDs    []uuid.UUID
	Window     Window
	Status     Status
	Now        time.Time
}

// Matches evaluates the filter against b. itemOwner is the owner of b's item and
// is consulted only when OwnerID is set.
func (f Filter) Matches(b *Booking, itemOwner uuid.UUID) bool {
	if f.BookerID != uuid.Nil && b.bookerID != f.BookerID {
		return false
	}
	if f.OwnerID != uuid.Nil && itemOwner != f.OwnerID {
		return false
	}
	if f.ItemScoped && !containsID(f.ItemIDs, b.itemID) {
		return false
	}
	if f.Status != "" && b.status != f.Status {
		return false
	}
	switch f.Window {
	case WindowCurrent:
		return !b.start.After(f.Now) && !b.end.Before(f.Now)
	case WindowPast:
		return b.end.Before(f.Now)
	case WindowFuture:
		return b.start.After(f.Now)
	}
	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
