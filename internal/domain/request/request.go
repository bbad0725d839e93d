package request

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

var ErrRequestNotFound = domain.NewNotFoundError("request_not_found", "Item request not found")

// ItemRequest is a user's public ask for an item nobody has listed yet.
// Owners answer it by creating an item linked to the request.
type ItemRequest struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// NewItemRequest validates and creates a request made at createdAt.
func NewItemRequest(requesterID uuid.UUID, description string, createdAt time.Time) (*ItemRequest, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	return &ItemRequest{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt.UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence data (no validation).
func Reconstruct(id, requesterID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{id: id, requesterID: requesterID, description: description, createdAt: createdAt}
}

func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequesterID() uuid.UUID { return r.requesterID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }

// ItemRequestRepository defines persistence operations for item requests.
// Listings are ordered oldest first.
type ItemRequestRepository interface {
	Save(ctx context.Context, r *ItemRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)
	// FindExcludingRequester returns every request made by someone other than requesterID.
	FindExcludingRequester(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)
}
