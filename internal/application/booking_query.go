package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// queryPlan describes how one (role, state) pair becomes a repository filter.
// Plans with resolveItems receive the ids of the user's items; the rest receive nil.
type queryPlan struct {
	resolveItems bool
	build        func(userID uuid.UUID, itemIDs []uuid.UUID, now time.Time) bookingDomain.Filter
}

func byBooker(window bookingDomain.Window, status bookingDomain.Status) queryPlan {
	return queryPlan{
		build: func(userID uuid.UUID, _ []uuid.UUID, now time.Time) bookingDomain.Filter {
			return bookingDomain.Filter{BookerID: userID, Window: window, Status: status, Now: now}
		},
	}
}

func byOwnedItems(window bookingDomain.Window, status bookingDomain.Status) queryPlan {
	return queryPlan{
		resolveItems: true,
		build: func(_ uuid.UUID, itemIDs []uuid.UUID, now time.Time) bookingDomain.Filter {
			return bookingDomain.Filter{ItemScoped: true, ItemIDs: itemIDs, Window: window, Status: status, Now: now}
		},
	}
}

func byItemOwner(window bookingDomain.Window, status bookingDomain.Status) queryPlan {
	return queryPlan{
		build: func(userID uuid.UUID, _ []uuid.UUID, now time.Time) bookingDomain.Filter {
			return bookingDomain.Filter{OwnerID: userID, Window: window, Status: status, Now: now}
		},
	}
}

// queryPlans covers every role and state. Owner CURRENT joins on the owner id
// directly instead of materializing the owned item ids.
var queryPlans = map[bookingDomain.Role]map[bookingDomain.State]queryPlan{
	bookingDomain.RoleBooker: {
		bookingDomain.StateAll:      byBooker(bookingDomain.WindowAny, ""),
		bookingDomain.StateCurrent:  byBooker(bookingDomain.WindowCurrent, ""),
		bookingDomain.StatePast:     byBooker(bookingDomain.WindowPast, ""),
		bookingDomain.StateFuture:   byBooker(bookingDomain.WindowFuture, ""),
		bookingDomain.StateWaiting:  byBooker(bookingDomain.WindowAny, bookingDomain.StatusWaiting),
		bookingDomain.StateRejected: byBooker(bookingDomain.WindowAny, bookingDomain.StatusRejected),
	},
	bookingDomain.RoleOwner: {
		bookingDomain.StateAll:      byOwnedItems(bookingDomain.WindowAny, ""),
		bookingDomain.StateCurrent:  byItemOwner(bookingDomain.WindowCurrent, ""),
		bookingDomain.StatePast:     byOwnedItems(bookingDomain.WindowPast, ""),
		bookingDomain.StateFuture:   byOwnedItems(bookingDomain.WindowFuture, ""),
		bookingDomain.StateWaiting:  byOwnedItems(bookingDomain.WindowAny, bookingDomain.StatusWaiting),
		bookingDomain.StateRejected: byOwnedItems(bookingDomain.WindowAny, bookingDomain.StatusRejected),
	},
}

// BookingQuery partitions a user's bookings by state from the booker's or the owner's side.
type BookingQuery struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
}

// NewBookingQuery creates a new BookingQuery.
func NewBookingQuery(bookings bookingDomain.BookingRepository, items itemDomain.ItemRepository) *BookingQuery {
	return &BookingQuery{bookings: bookings, items: items}
}

// Find returns the bookings in state as of now, latest start first with ties in insertion order.
func (q *BookingQuery) Find(
	ctx context.Context,
	role bookingDomain.Role,
	userID uuid.UUID,
	state bookingDomain.State,
	now time.Time,
) ([]*bookingDomain.Booking, error) {
	plan, ok := queryPlans[role][state]
	if !ok {
		return nil, domain.NewInvalidInputError("unknown_state", "Unknown state: "+string(state))
	}

	var itemIDs []uuid.UUID
	if plan.resolveItems {
		ids, err := q.items.IDsOwnedBy(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve owned items: %w", err)
		}
		itemIDs = ids
	}

	bookings, err := q.bookings.Find(ctx, plan.build(userID, itemIDs, now))
	if err != nil {
		return nil, err
	}
	bookingDomain.SortByStartDesc(bookings)
	return bookings, nil
}
