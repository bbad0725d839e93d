package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/internal/application"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/repository/memory"
	"github.com/shareit-platform/service-booking/pkg/kafka"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, event: event})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.event.Type
	}
	return out
}

var errBrokerDown = errors.New("broker down")

type fixture struct {
	ctx       context.Context
	now       time.Time
	store     *memory.Store
	publisher *recordingPublisher
	bookings  *application.BookingService
	items     *application.ItemService
	comments  *application.CommentService
	requests  *application.RequestService
	projector *application.AvailabilityProjector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		now:       time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC),
		store:     memory.NewStore(),
		publisher: &recordingPublisher{},
	}
	clock := func() time.Time { return f.now }
	log := zap.NewNop()

	bookingRepo, itemRepo, commentRepo := f.store.Bookings(), f.store.Items(), f.store.Comments()
	f.projector = application.NewAvailabilityProjector(bookingRepo, itemRepo)
	f.bookings = application.NewBookingService(bookingRepo, itemRepo, f.publisher, clock, log)
	f.items = application.NewItemService(itemRepo, commentRepo, f.store.Requests(), f.projector, clock, log)
	f.comments = application.NewCommentService(commentRepo, itemRepo, bookingRepo, clock, log)
	f.requests = application.NewRequestService(f.store.Requests(), itemRepo, clock, log)
	return f
}

func (f *fixture) addItem(t *testing.T, ownerID uuid.UUID, available bool) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, "Item "+ownerID.String()[:8], "Shareable thing", available)
	require.NoError(t, err)
	require.NoError(t, f.store.Items().Save(f.ctx, it))
	return it
}

// addBooking stores a booking relative to f.now and applies status directly.
func (f *fixture) addBooking(t *testing.T, itemID, bookerID uuid.UUID, from, to time.Duration, status bookingDomain.Status) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(itemID, bookerID, f.now.Add(from), f.now.Add(to))
	require.NoError(t, err)
	if status != bookingDomain.StatusWaiting {
		require.NoError(t, bk.Decide(status == bookingDomain.StatusApproved))
	}
	require.NoError(t, f.store.Bookings().Save(f.ctx, bk))
	return bk
}

func ts(t time.Time) application.Timestamp { return application.NewTimestamp(t) }

func bookingIDs(dtos []application.BookingDTO) []uuid.UUID {
	ids := make([]uuid.UUID, len(dtos))
	for i, d := range dtos {
		ids[i] = d.ID
	}
	return ids
}
