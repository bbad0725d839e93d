package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	"gorm.io/gorm"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"autoIncrement;not null;index"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements CommentRepository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := CommentModel{
		ID:        c.ID(),
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (r *GormCommentRepository) FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*commentDomain.Comment, error) {
	var models []CommentModel
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("seq ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := make([]*commentDomain.Comment, len(models))
	for i, m := range models {
		comments[i] = commentDomain.Reconstruct(m.ID, m.ItemID, m.AuthorID, m.Text, m.CreatedAt.UTC())
	}
	return comments, nil
}
