// Package events defines the topics and payloads this service publishes.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// Source identifies this service in CloudEvent envelopes.
	Source = "service-booking"

	TopicBookingEvents = "booking.events"

	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingRejected = "booking.rejected"
)

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID  uuid.UUID `json:"bookingId"`
	ItemID     uuid.UUID `json:"itemId"`
	BookerID   uuid.UUID `json:"bookerId"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DecisionEventType returns the event type for an owner's decision.
func DecisionEventType(approved bool) string {
	if approved {
		return BookingApproved
	}
	return BookingRejected
}
