package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"go.uber.org/zap"
)

// CreateItemRequest is the request DTO for listing an item. RequestID links the
// listing to the item request it answers.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"requestId"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDTO is the API response representation of an item.
type ItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Available   bool       `json:"available"`
	RequestID   *uuid.UUID `json:"requestId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// BookingSummaryDTO is the short booking form shown on an item.
type BookingSummaryDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"bookerId"`
	Start    Timestamp `json:"start"`
	End      Timestamp `json:"end"`
}

// ItemDetailDTO is an item with its comments and, for the owner, its booking projection.
type ItemDetailDTO struct {
	ItemDTO
	LastBooking *BookingSummaryDTO `json:"lastBooking,omitempty"`
	NextBooking *BookingSummaryDTO `json:"nextBooking,omitempty"`
	Comments    []CommentDTO       `json:"comments"`
}

// ItemService implements use cases for item listings.
type ItemService struct {
	items     itemDomain.ItemRepository
	comments  commentDomain.CommentRepository
	requests  requestDomain.ItemRequestRepository
	projector *AvailabilityProjector
	clock     Clock
	logger    *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	comments commentDomain.CommentRepository,
	requests requestDomain.ItemRequestRepository,
	projector *AvailabilityProjector,
	clock Clock,
	logger *zap.Logger,
) *ItemService {
	if clock == nil {
		clock = SystemClock
	}
	return &ItemService{
		items:     items,
		comments:  comments,
		requests:  requests,
		projector: projector,
		clock:     clock,
		logger:    logger,
	}
}

// CreateItem lists a new item owned by ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	available := req.Available != nil && *req.Available
	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, available)
	if err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		answered, err := s.requests.FindByID(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		it.AnswerRequest(answered.ID())
	}

	if err := s.items.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", it.ID().String()),
		zap.String("user_id", ownerID.String()),
	)

	dto := toItemDTO(it)
	return &dto, nil
}

// UpdateItem applies a partial update. Only the owner may edit an item.
func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(userID) {
		return nil, itemDomain.ErrNotOwner
	}

	it.Update(req.Name, req.Description, req.Available)
	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("item updated",
		zap.String("item_id", it.ID().String()),
		zap.Bool("available", it.Available()),
	)

	dto := toItemDTO(it)
	return &dto, nil
}

// GetItem returns an item's detail as seen by viewerID.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID uuid.UUID) (*ItemDetailDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	detail, err := s.detail(ctx, it, viewerID, s.clock())
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListOwnerItems returns the owner's items with their details, oldest first.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID uuid.UUID) ([]ItemDetailDTO, error) {
	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	result := make([]ItemDetailDTO, 0, len(items))
	for _, it := range items {
		detail, err := s.detail(ctx, it, ownerID, now)
		if err != nil {
			return nil, err
		}
		result = append(result, detail)
	}
	return result, nil
}

// SearchItems finds available items by name or description. Blank text matches nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}
	items, err := s.items.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	result := make([]ItemDTO, len(items))
	for i, it := range items {
		result[i] = toItemDTO(it)
	}
	return result, nil
}

func (s *ItemService) detail(ctx context.Context, it *itemDomain.Item, viewerID uuid.UUID, now time.Time) (ItemDetailDTO, error) {
	projection, err := s.projector.project(ctx, it, viewerID, now)
	if err != nil {
		return ItemDetailDTO{}, err
	}
	comments, err := s.comments.FindByItemID(ctx, it.ID())
	if err != nil {
		return ItemDetailDTO{}, err
	}

	detail := ItemDetailDTO{
		ItemDTO:     toItemDTO(it),
		LastBooking: toBookingSummary(projection.Last),
		NextBooking: toBookingSummary(projection.Next),
		Comments:    make([]CommentDTO, len(comments)),
	}
	for i, c := range comments {
		detail.Comments[i] = toCommentDTO(c)
	}
	return detail, nil
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	dto := ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
	if id := it.RequestID(); id != uuid.Nil {
		dto.RequestID = &id
	}
	return dto
}

func toBookingSummary(bk *bookingDomain.Booking) *BookingSummaryDTO {
	if bk == nil {
		return nil
	}
	return &BookingSummaryDTO{
		ID:       bk.ID(),
		BookerID: bk.BookerID(),
		Start:    NewTimestamp(bk.Start()),
		End:      NewTimestamp(bk.End()),
	}
}
