package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type BookingReader struct {
	*Reader[models.Booking]
}

func NewBookingReader(db *gorm.DB) *BookingReader {
	return &BookingReader{Reader: NewReader[models.Booking](db, apperr.EntityBooking)}
}

// ListByUser returns a user's bookings, most recent check-in first, with the property loaded.
func (r *BookingReader) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	out := make([]models.Booking, 0)
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("user_id = ?", userID).
		Order("check_in DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", userID, err)
	}
	return out, nil
}
