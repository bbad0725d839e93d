package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
)

// Projection holds the bookings an owner sees next to an item. Both are nil when
// the viewer is not the owner or no booking qualifies.
type Projection struct {
	Next *bookingDomain.Booking
	Last *bookingDomain.Booking
}

// AvailabilityProjector derives the next and last booking of an item.
type AvailabilityProjector struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
}

// NewAvailabilityProjector creates a new AvailabilityProjector.
func NewAvailabilityProjector(bookings bookingDomain.BookingRepository, items itemDomain.ItemRepository) *AvailabilityProjector {
	return &AvailabilityProjector{bookings: bookings, items: items}
}

// Project loads the item and projects its bookings for viewerID as of now.
func (p *AvailabilityProjector) Project(ctx context.Context, itemID, viewerID uuid.UUID, now time.Time) (Projection, error) {
	it, err := p.items.FindByID(ctx, itemID)
	if err != nil {
		return Projection{}, err
	}
	return p.project(ctx, it, viewerID, now)
}

// project picks, among the item's bookings ordered by start descending, the first
// that starts after now as Next and the first that ended before now as Last.
// Next is therefore the furthest future booking, not the soonest.
func (p *AvailabilityProjector) project(ctx context.Context, it *itemDomain.Item, viewerID uuid.UUID, now time.Time) (Projection, error) {
	if !it.IsOwnedBy(viewerID) {
		return Projection{}, nil
	}

	scope := []uuid.UUID{it.ID()}
	future, err := p.bookings.Find(ctx, bookingDomain.Filter{
		ItemScoped: true, ItemIDs: scope, Window: bookingDomain.WindowFuture, Now: now,
	})
	if err != nil {
		return Projection{}, err
	}
	past, err := p.bookings.Find(ctx, bookingDomain.Filter{
		ItemScoped: true, ItemIDs: scope, Window: bookingDomain.WindowPast, Now: now,
	})
	if err != nil {
		return Projection{}, err
	}

	return Projection{Next: firstByStartDesc(future), Last: firstByStartDesc(past)}, nil
}

func firstByStartDesc(bookings []*bookingDomain.Booking) *bookingDomain.Booking {
	if len(bookings) == 0 {
		return nil
	}
	bookingDomain.SortByStartDesc(bookings)
	return bookings[0]
}
