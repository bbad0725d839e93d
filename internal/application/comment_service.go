package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"go.uber.org/zap"
)

// AddCommentRequest is the request DTO for commenting on an item.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CommentDTO is the API response representation of a comment.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"itemId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created"`
}

// CommentService handles item comments.
type CommentService struct {
	comments commentDomain.CommentRepository
	items    itemDomain.ItemRepository
	bookings bookingDomain.BookingRepository
	clock    Clock
	logger   *zap.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	comments commentDomain.CommentRepository,
	items itemDomain.ItemRepository,
	bookings bookingDomain.BookingRepository,
	clock Clock,
	logger *zap.Logger,
) *CommentService {
	if clock == nil {
		clock = SystemClock
	}
	return &CommentService{comments: comments, items: items, bookings: bookings, clock: clock, logger: logger}
}

// AddComment stores a comment from a user whose approved booking of the item has ended.
func (s *CommentService) AddComment(ctx context.Context, authorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	c, err := commentDomain.NewComment(itemID, authorID, req.Text)
	if err != nil {
		return nil, err
	}

	completed, err := s.bookings.Find(ctx, bookingDomain.Filter{
		BookerID:   authorID,
		ItemScoped: true,
		ItemIDs:    []uuid.UUID{itemID},
		Status:     bookingDomain.StatusApproved,
		Window:     bookingDomain.WindowPast,
		Now:        s.clock(),
	})
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return nil, commentDomain.ErrCommentNotAllowed
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.logger.Info("comment added",
		zap.String("item_id", itemID.String()),
		zap.String("user_id", authorID.String()),
	)

	dto := toCommentDTO(c)
	return &dto, nil
}

func toCommentDTO(c *commentDomain.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID(),
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
}
