package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

var (
	ErrBookingNotFound   = domain.NewNotFoundError("booking_not_found", "Booking not found")
	ErrZeroLengthBooking = domain.NewInvalidOperationError("zero_length_booking", "Booking start and end must differ")
	ErrEndBeforeStart    = domain.NewInvalidOperationError("end_before_start", "Booking end must be after its start")
	ErrAlreadyDecided    = domain.NewInvalidOperationError("already_decided", "Booking has already been approved or rejected")
	ErrOwnerCannotBook   = domain.NewInvalidOperationError("owner_cannot_book", "Owner cannot book own item")
	ErrNotItemOwner      = domain.NewInvalidOperationError("not_item_owner", "Only the item owner can approve a booking")
)

// Booking is the aggregate root for an item reservation.
type Booking struct {
	id       uuid.UUID
	start    time.Time
	end      time.Time
	itemID   uuid.UUID
	bookerID uuid.UUID
	status   Status

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a WAITING booking of itemID by bookerID for [start, end].
func NewBooking(itemID, bookerID uuid.UUID, start, end time.Time) (*Booking, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if start.Equal(end) {
		return nil, ErrZeroLengthBooking
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		start:     start.UTC(),
		end:       end.UTC(),
		itemID:    itemID,
		bookerID:  bookerID,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	start, end time.Time,
	itemID, bookerID uuid.UUID,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		start:     start,
		end:       end,
		itemID:    itemID,
		bookerID:  bookerID,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Start returns the beginning of the reserved window.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the reserved window.
func (b *Booking) End() time.Time { return b.end }

// ItemID returns the reserved item's id.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the id of the user who made the reservation.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Decide approves or rejects a WAITING booking. Any other status is final.
func (b *Booking) Decide(approved bool) error {
	next, err := b.status.Decide(approved)
	if err != nil {
		return err
	}
	b.status = next
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// IsBookedBy reports whether userID made this booking.
func (b *Booking) IsBookedBy(userID uuid.UUID) bool { return b.bookerID == userID }

// HasEndedBy reports whether the booking window closed strictly before now.
func (b *Booking) HasEndedBy(now time.Time) bool { return b.end.Before(now) }
