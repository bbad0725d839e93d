// Package memory provides process-local repositories for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Store holds every aggregate in insertion order. Bookings, Items, Comments and
// Requests return typed views of it implementing the matching repository ports.
type Store struct {
	mu       sync.RWMutex
	bookings []*bookingDomain.Booking
	items    []*itemDomain.Item
	comments []*commentDomain.Comment
	requests []*requestDomain.ItemRequest
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Bookings returns the store as a BookingRepository.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s} }

// Items returns the store as an ItemRepository.
func (s *Store) Items() *ItemRepository { return &ItemRepository{s} }

// Comments returns the store as a CommentRepository.
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s} }

// Requests returns the store as an ItemRequestRepository.
func (s *Store) Requests() *RequestRepository { return &RequestRepository{s} }

// BookingRepository is the in-memory BookingRepository.
type BookingRepository struct{ s *Store }

func (r *BookingRepository) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.bookings {
		if b.ID() == id {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingDomain.ErrBookingNotFound
}

func (r *BookingRepository) Find(_ context.Context, f bookingDomain.Filter) ([]*bookingDomain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*bookingDomain.Booking, 0)
	for _, b := range r.s.bookings {
		var owner uuid.UUID
		if f.OwnerID != uuid.Nil {
			if it := r.s.itemByID(b.ItemID()); it != nil {
				owner = it.OwnerID()
			}
		}
		if f.Matches(b, owner) {
			result = append(result, cloneBooking(b))
		}
	}
	bookingDomain.SortByStartDesc(result)
	return result, nil
}

func (r *BookingRepository) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings = append(r.s.bookings, cloneBooking(b))
	return nil
}

func (r *BookingRepository) Update(_ context.Context, b *bookingDomain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.bookings {
		if stored.ID() != b.ID() {
			continue
		}
		if stored.Version() != b.Version()-1 {
			return domain.NewConflictError("booking was modified by another transaction")
		}
		r.s.bookings[i] = cloneBooking(b)
		return nil
	}
	return bookingDomain.ErrBookingNotFound
}

// ItemRepository is the in-memory ItemRepository.
type ItemRepository struct{ s *Store }

func (r *ItemRepository) FindByID(_ context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if it := r.s.itemByID(id); it != nil {
		return cloneItem(it), nil
	}
	return nil, itemDomain.ErrItemNotFound
}

func (r *ItemRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*itemDomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]*itemDomain.Item, 0, len(ids))
	for _, id := range ids {
		if it := r.s.itemByID(id); it != nil {
			items = append(items, cloneItem(it))
		}
	}
	return items, nil
}

func (r *ItemRepository) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	return r.filter(func(it *itemDomain.Item) bool { return it.IsOwnedBy(ownerID) }), nil
}

func (r *ItemRepository) IDsOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	items, _ := r.FindByOwnerID(ctx, ownerID)
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids, nil
}

func (r *ItemRepository) FindByRequestIDs(_ context.Context, requestIDs []uuid.UUID) ([]*itemDomain.Item, error) {
	return r.filter(func(it *itemDomain.Item) bool {
		return it.RequestID() != uuid.Nil && containsID(requestIDs, it.RequestID())
	}), nil
}

func (r *ItemRepository) Search(_ context.Context, text string) ([]*itemDomain.Item, error) {
	return r.filter(func(it *itemDomain.Item) bool {
		return it.Available() && it.MatchesText(text)
	}), nil
}

func (r *ItemRepository) Save(_ context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items = append(r.s.items, cloneItem(it))
	return nil
}

func (r *ItemRepository) Update(_ context.Context, it *itemDomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, stored := range r.s.items {
		if stored.ID() != it.ID() {
			continue
		}
		if stored.Version() != it.Version()-1 {
			return domain.NewConflictError("item was modified by another transaction")
		}
		r.s.items[i] = cloneItem(it)
		return nil
	}
	return itemDomain.ErrItemNotFound
}

func (r *ItemRepository) filter(keep func(*itemDomain.Item) bool) []*itemDomain.Item {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]*itemDomain.Item, 0)
	for _, it := range r.s.items {
		if keep(it) {
			items = append(items, cloneItem(it))
		}
	}
	return items
}

// CommentRepository is the in-memory CommentRepository.
type CommentRepository struct{ s *Store }

func (r *CommentRepository) Save(_ context.Context, c *commentDomain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments = append(r.s.comments, c)
	return nil
}

func (r *CommentRepository) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := make([]*commentDomain.Comment, 0)
	for _, c := range r.s.comments {
		if c.ItemID() == itemID {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// RequestRepository is the in-memory ItemRequestRepository.
type RequestRepository struct{ s *Store }

func (r *RequestRepository) Save(_ context.Context, req *requestDomain.ItemRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.requests = append(r.s.requests, req)
	return nil
}

func (r *RequestRepository) FindByID(_ context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, req := range r.s.requests {
		if req.ID() == id {
			return req, nil
		}
	}
	return nil, requestDomain.ErrRequestNotFound
}

func (r *RequestRepository) FindByRequester(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.filter(func(req *requestDomain.ItemRequest) bool { return req.RequesterID() == requesterID }), nil
}

func (r *RequestRepository) FindExcludingRequester(_ context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.filter(func(req *requestDomain.ItemRequest) bool { return req.RequesterID() != requesterID }), nil
}

// filter keeps insertion order, then orders by creation time.
func (r *RequestRepository) filter(keep func(*requestDomain.ItemRequest) bool) []*requestDomain.ItemRequest {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	requests := make([]*requestDomain.ItemRequest, 0)
	for _, req := range r.s.requests {
		if keep(req) {
			requests = append(requests, req)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt().Before(requests[j].CreatedAt())
	})
	return requests
}

// itemByID must be called with mu held.
func (s *Store) itemByID(id uuid.UUID) *itemDomain.Item {
	for _, it := range s.items {
		if it.ID() == id {
			return it
		}
	}
	return nil
}

// Stored aggregates are copied in and out so callers cannot mutate them in place.

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.Start(), b.End(), b.ItemID(), b.BookerID(),
		b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func cloneItem(it *itemDomain.Item) *itemDomain.Item {
	return itemDomain.Reconstruct(
		it.ID(), it.OwnerID(), it.Name(), it.Description(),
		it.Available(), it.RequestID(), it.Version(), it.CreatedAt(), it.UpdatedAt(),
	)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
