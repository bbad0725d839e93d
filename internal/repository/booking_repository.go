package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// Seq records insertion order and breaks ties between equal start times.
	Seq       int64     `gorm:"autoIncrement;not null;index"`
	StartDate time.Time `gorm:"column:start_date;type:timestamptz;not null"`
	EndDate   time.Time `gorm:"column:end_date;type:timestamptz;not null"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BookerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"not null;size:16;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookingDomain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return toDomainBooking(&model)
}

// Find translates the filter into a single query ordered by start descending, then insertion order.
func (r *GormBookingRepository) Find(ctx context.Context, f bookingDomain.Filter) ([]*bookingDomain.Booking, error) {
	if f.ItemScoped && len(f.ItemIDs) == 0 {
		return []*bookingDomain.Booking{}, nil
	}

	q := r.db.WithContext(ctx).Model(&BookingModel{})
	if f.BookerID != uuid.Nil {
		q = q.Where("booker_id = ?", f.BookerID)
	}
	if f.OwnerID != uuid.Nil {
		q = q.Where("item_id IN (?)",
			r.db.Model(&ItemModel{}).Select("id").Where("owner_id = ?", f.OwnerID))
	}
	if f.ItemScoped {
		q = q.Where("item_id IN ?", f.ItemIDs)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	switch f.Window {
	case bookingDomain.WindowCurrent:
		q = q.Where("start_date <= ? AND end_date >= ?", f.Now, f.Now)
	case bookingDomain.WindowPast:
		q = q.Where("end_date < ?", f.Now)
	case bookingDomain.WindowFuture:
		q = q.Where("start_date > ?", f.Now)
	}

	var models []BookingModel
	if err := q.Order("start_date DESC").Order("seq ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, 0, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, bk)
	}
	return bookings, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", bk.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(bk.Status()),
			"version":    bk.Version(),
			"updated_at": bk.UpdatedAt(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		StartDate: bk.Start(),
		EndDate:   bk.End(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", m.ID, err)
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.StartDate.UTC(), m.EndDate.UTC(),
		m.ItemID, m.BookerID,
		status,
		m.Version,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	), nil
}
