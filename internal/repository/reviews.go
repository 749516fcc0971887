package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type ReviewReader struct {
	*Reader[models.Review]
}

func NewReviewReader(db *gorm.DB) *ReviewReader {
	return &ReviewReader{Reader: NewReader[models.Review](db, apperr.EntityReview)}
}

func (r *ReviewReader) ListByProperty(ctx context.Context, propertyID uint) ([]models.Review, error) {
	out := make([]models.Review, 0)
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("property_id = ?", propertyID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews of property %d: %w", propertyID, err)
	}
	return out, nil
}
