package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"go.uber.org/zap"
)

// NewItemRequest is the request DTO for asking for an item.
type NewItemRequest struct {
	Description string `json:"description" binding:"required"`
}

// ResponseItemDTO is an item listed in answer to a request.
type ResponseItemDTO struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"ownerId"`
}

// ItemRequestDTO is the API response representation of an item request.
type ItemRequestDTO struct {
	ID          uuid.UUID         `json:"id"`
	Description string            `json:"description"`
	RequesterID uuid.UUID         `json:"requesterId"`
	Created     Timestamp         `json:"created"`
	Items       []ResponseItemDTO `json:"items"`
}

// RequestService implements use cases for item requests.
type RequestService struct {
	requests requestDomain.ItemRequestRepository
	items    itemDomain.ItemRepository
	clock    Clock
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.ItemRequestRepository,
	items itemDomain.ItemRepository,
	clock Clock,
	logger *zap.Logger,
) *RequestService {
	if clock == nil {
		clock = SystemClock
	}
	return &RequestService{requests: requests, items: items, clock: clock, logger: logger}
}

// AddRequest records requesterID asking for an item.
func (s *RequestService) AddRequest(ctx context.Context, requesterID uuid.UUID, req NewItemRequest) (*ItemRequestDTO, error) {
	r, err := requestDomain.NewItemRequest(requesterID, req.Description, s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created",
		zap.String("request_id", r.ID().String()),
		zap.String("user_id", requesterID.String()),
	)

	dto := toItemRequestDTO(r, nil)
	return &dto, nil
}

// ListOwnRequests returns the user's requests with the items answering them, oldest first.
func (s *RequestService) ListOwnRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	requests, err := s.requests.FindByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOtherRequests returns everyone else's requests, oldest first.
func (s *RequestService) ListOtherRequests(ctx context.Context, userID uuid.UUID) ([]ItemRequestDTO, error) {
	requests, err := s.requests.FindExcludingRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// GetRequest returns one request with the items answering it. Any user may view it.
func (s *RequestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*ItemRequestDTO, error) {
	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.withItems(ctx, []*requestDomain.ItemRequest{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.ID()
	}

	items, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[uuid.UUID][]*itemDomain.Item, len(requests))
	for _, it := range items {
		byRequest[it.RequestID()] = append(byRequest[it.RequestID()], it)
	}

	result := make([]ItemRequestDTO, len(requests))
	for i, r := range requests {
		result[i] = toItemRequestDTO(r, byRequest[r.ID()])
	}
	return result, nil
}

func toItemRequestDTO(r *requestDomain.ItemRequest, items []*itemDomain.Item) ItemRequestDTO {
	dto := ItemRequestDTO{
		ID:          r.ID(),
		Description: r.Description(),
		RequesterID: r.RequesterID(),
		Created:     NewTimestamp(r.CreatedAt()),
		Items:       make([]ResponseItemDTO, len(items)),
	}
	for i, it := range items {
		dto.Items[i] = ResponseItemDTO{ID: it.ID(), Name: it.Name(), OwnerID: it.OwnerID()}
	}
	return dto
}
