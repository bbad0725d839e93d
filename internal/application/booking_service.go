package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/events"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/shareit-platform/service-booking/pkg/kafka"
	"go.uber.org/zap"
)

// CreateBookingRequest holds the data needed to create a new booking.
// Any status supplied by the client is ignored.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"itemId" binding:"required"`
	Start  Timestamp `json:"start"`
	End    Timestamp `json:"end"`
}

// Validate reports missing fields that binding tags cannot express.
func (r CreateBookingRequest) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return domain.NewInvalidInputError("missing_window", "start and end are required")
	}
	return nil
}

// UserRefDTO identifies a user.
type UserRefDTO struct {
	ID uuid.UUID `json:"id"`
}

// ItemRefDTO identifies an item.
type ItemRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     uuid.UUID  `json:"id"`
	Start  Timestamp  `json:"start"`
	End    Timestamp  `json:"end"`
	Status string     `json:"status"`
	Booker UserRefDTO `json:"booker"`
	Item   ItemRefDTO `json:"item"`
}

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating the booking lifecycle.
type BookingService struct {
	bookings  bookingDomain.BookingRepository
	items     itemDomain.ItemRepository
	query     *BookingQuery
	publisher EventPublisher
	clock     Clock
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	publisher EventPublisher,
	clock Clock,
	logger *zap.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock
	}
	return &BookingService{
		bookings:  bookings,
		items:     items,
		query:     NewBookingQuery(bookings, items),
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// CreateBooking reserves an item for the requester. Overlapping reservations of
// the same item are not detected; the item's available flag is the only guard.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !it.Available() {
		return nil, itemDomain.ErrItemUnavailable
	}
	if it.IsOwnedBy(bookerID) {
		return nil, bookingDomain.ErrOwnerCannotBook
	}

	bk, err := bookingDomain.NewBooking(it.ID(), bookerID, req.Start.Time(), req.End.Time())
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("user_id", bookerID.String()),
	)
	s.publishBookingEvent(ctx, events.BookingCreated, bk, it.OwnerID())

	result := toBookingDTO(bk, it.Name())
	return &result, nil
}

// ApproveBooking records the item owner's decision on a WAITING booking.
func (s *BookingService) ApproveBooking(ctx context.Context, approverID, bookingID uuid.UUID, approved bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(approverID) {
		return nil, bookingDomain.ErrNotItemOwner
	}

	if err := bk.Decide(approved); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		// A concurrent decision won the version check.
		if domain.IsConflict(err) {
			return nil, bookingDomain.ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	s.logger.Info("booking decided",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
		zap.String("user_id", approverID.String()),
	)
	s.publishBookingEvent(ctx, events.DecisionEventType(approved), bk, it.OwnerID())

	result := toBookingDTO(bk, it.Name())
	return &result, nil
}

// GetBooking returns a booking visible to its booker or its item's owner.
// Anyone else gets the same not-found error as for a missing booking.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	switch {
	case bk.IsBookedBy(userID):
	case it != nil && it.IsOwnedBy(userID):
	default:
		return nil, bookingDomain.ErrBookingNotFound
	}

	var name string
	if it != nil {
		name = it.Name()
	}
	result := toBookingDTO(bk, name)
	return &result, nil
}

// ListBookerBookings lists the user's own reservations in the given state, latest start first.
func (s *BookingService) ListBookerBookings(ctx context.Context, userID uuid.UUID, state string) ([]BookingDTO, error) {
	return s.list(ctx, bookingDomain.RoleBooker, userID, state)
}

// ListOwnerBookings lists reservations of the user's items in the given state, latest start first.
func (s *BookingService) ListOwnerBookings(ctx context.Context, userID uuid.UUID, state string) ([]BookingDTO, error) {
	return s.list(ctx, bookingDomain.RoleOwner, userID, state)
}

func (s *BookingService) list(ctx context.Context, role bookingDomain.Role, userID uuid.UUID, rawState string) ([]BookingDTO, error) {
	state, err := bookingDomain.ParseState(rawState)
	if err != nil {
		return nil, err
	}

	bookings, err := s.query.Find(ctx, role, userID, state, s.clock())
	if err != nil {
		return nil, err
	}
	return s.toBookingDTOs(ctx, bookings)
}

func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.ItemID()]; !ok {
			seen[bk.ItemID()] = struct{}{}
			ids = append(ids, bk.ItemID())
		}
	}

	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(items))
	for _, it := range items {
		names[it.ID()] = it.Name()
	}

	result := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		result[i] = toBookingDTO(bk, names[bk.ItemID()])
	}
	return result, nil
}

func toBookingDTO(bk *bookingDomain.Booking, itemName string) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  NewTimestamp(bk.Start()),
		End:    NewTimestamp(bk.End()),
		Status: bk.Status().String(),
		Booker: UserRefDTO{ID: bk.BookerID()},
		Item:   ItemRefDTO{ID: bk.ItemID(), Name: itemName},
	}
}

func (s *BookingService) publishBookingEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, ownerID uuid.UUID) {
	evt := events.BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		OwnerID:    ownerID,
		Status:     bk.Status().String(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: s.clock(),
	}

	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, bk.ID().String(), evt)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}
}
