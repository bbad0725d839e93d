package booking

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Find returns every booking matching filter, ordered by start descending
	// with ties in insertion order.
	Find(ctx context.Context, filter Filter) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// It fails with a Conflict error if the stored version is not Version()-1.
	Update(ctx context.Context, booking *Booking) error
}

// SortByStartDesc orders bookings latest start first, keeping the relative order of equal starts.
func SortByStartDesc(bookings []*Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].start.After(bookings[j].start)
	})
}
