package comment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

var ErrCommentNotAllowed = domain.NewInvalidOperationError("comment_not_allowed",
	"Only users who completed an approved booking of this item can comment on it")

// Comment is a review left on an item by a past booker.
type Comment struct {
	id        uuid.UUID
	itemID    uuid.UUID
	authorID  uuid.UUID
	text      string
	createdAt time.Time
}

// NewComment validates and creates a comment.
func NewComment(itemID, authorID uuid.UUID, text string) (*Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	return &Comment{
		id:        uuid.New(),
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Comment from persistence data (no validation).
func Reconstruct(id, itemID, authorID uuid.UUID, text string, createdAt time.Time) *Comment {
	return &Comment{id: id, itemID: itemID, authorID: authorID, text: text, createdAt: createdAt}
}

func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Save(ctx context.Context, comment *Comment) error
	// FindByItemID returns an item's comments oldest first.
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
}
