package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"gorm.io/gorm"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name        string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text;not null"`
	Available   bool       `gorm:"not null;default:true"`
	RequestID   *uuid.UUID `gorm:"type:uuid;index"`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;not null"`
}

func (ItemModel) TableName() string { return "items" }

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, itemDomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return toItemDomain(&model), nil
}

func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*itemDomain.Item, error) {
	if len(ids) == 0 {
		return []*itemDomain.Item{}, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	return toItemDomains(models), nil
}

func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return toItemDomains(models), nil
}

func (r *GormItemRepository) IDsOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list owned item ids: %w", err)
	}
	return ids, nil
}

func (r *GormItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*itemDomain.Item, error) {
	if len(requestIDs) == 0 {
		return []*itemDomain.Item{}, nil
	}
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by request: %w", err)
	}
	return toItemDomains(models), nil
}

func (r *GormItemRepository) Search(ctx context.Context, text string) ([]*itemDomain.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return toItemDomains(models), nil
}

func (r *GormItemRepository) Save(ctx context.Context, it *itemDomain.Item) error {
	if err := r.db.WithContext(ctx).Create(toItemModel(it)).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

func (r *GormItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	previousVersion := it.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ? AND version = ?", it.ID(), previousVersion).
		Updates(map[string]interface{}{
			"name":        it.Name(),
			"description": it.Description(),
			"available":   it.Available(),
			"version":     it.Version(),
			"updated_at":  it.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("item was modified by another transaction")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// --- Conversions ---

func toItemModel(it *itemDomain.Item) *ItemModel {
	var requestID *uuid.UUID
	if id := it.RequestID(); id != uuid.Nil {
		requestID = &id
	}
	return &ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   requestID,
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toItemDomain(m *ItemModel) *itemDomain.Item {
	var requestID uuid.UUID
	if m.RequestID != nil {
		requestID = *m.RequestID
	}
	return itemDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Name, m.Description,
		m.Available,
		requestID,
		m.Version,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	)
}

func toItemDomains(models []ItemModel) []*itemDomain.Item {
	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toItemDomain(&models[i])
	}
	return items
}
