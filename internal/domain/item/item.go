package item

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

var (
	ErrItemNotFound    = domain.NewNotFoundError("item_not_found", "Item not found")
	ErrItemUnavailable = domain.NewInvalidOperationError("item_unavailable", "Item is not available for booking")
	ErrNotOwner        = domain.NewForbiddenError("Only the owner can edit an item")
)

// Item is the aggregate root for a shareable item listing.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool
	requestID   uuid.UUID // item request this listing answers, or uuid.Nil

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewItem creates a listing owned by ownerID.
func NewItem(ownerID uuid.UUID, name, description string, available bool) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("item description is required")
	}

	now := time.Now().UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	name, description string,
	available bool,
	requestID uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) OwnerID() uuid.UUID   { return i.ownerID }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) Available() bool      { return i.available }
func (i *Item) RequestID() uuid.UUID { return i.requestID }
func (i *Item) Version() int64       { return i.version }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// AnswerRequest links a new listing to the item request it answers.
func (i *Item) AnswerRequest(requestID uuid.UUID) {
	i.requestID = requestID
}

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Update applies a partial update. Nil fields and blank strings are left unchanged.
func (i *Item) Update(name, description *string, available *bool) {
	if name != nil && strings.TrimSpace(*name) != "" {
		i.name = *name
	}
	if description != nil && strings.TrimSpace(*description) != "" {
		i.description = *description
	}
	if available != nil {
		i.available = *available
	}
	i.version++
	i.updatedAt = time.Now().UTC()
}

// MatchesText reports whether text occurs in the name or description, ignoring case.
func (i *Item) MatchesText(text string) bool {
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(i.name), needle) ||
		strings.Contains(strings.ToLower(i.description), needle)
}
