package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"gorm.io/gorm"
)

// RequestModel is the GORM model for the requests table.
type RequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq         int64     `gorm:"autoIncrement;not null;index"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

func (RequestModel) TableName() string { return "requests" }

// GormRequestRepository implements ItemRequestRepository using GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := RequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	return nil
}

func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model RequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requestDomain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find item request: %w", err)
	}
	return toRequestDomain(&model), nil
}

func (r *GormRequestRepository) FindByRequester(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.list(r.db.WithContext(ctx).Where("requester_id = ?", requesterID))
}

func (r *GormRequestRepository) FindExcludingRequester(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	return r.list(r.db.WithContext(ctx).Where("requester_id <> ?", requesterID))
}

func (r *GormRequestRepository) list(q *gorm.DB) ([]*requestDomain.ItemRequest, error) {
	var models []RequestModel
	if err := q.Order("created_at ASC").Order("seq ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	requests := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		requests[i] = toRequestDomain(&models[i])
	}
	return requests, nil
}

func toRequestDomain(m *RequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequesterID, m.Description, m.CreatedAt.UTC())
}
