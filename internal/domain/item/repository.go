package item

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines persistence operations for item listings.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// FindByIDs returns the items that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)
	// IDsOwnedBy returns the ids of every item owned by ownerID.
	IDsOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	// FindByRequestIDs returns the items answering any of requestIDs, oldest first.
	FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)
	// Search returns available items whose name or description contains text, ignoring case.
	Search(ctx context.Context, text string) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
}
