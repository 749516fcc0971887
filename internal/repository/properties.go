package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type PropertyReader struct {
	*Reader[models.Property]
}

func NewPropertyReader(db *gorm.DB) *PropertyReader {
	return &PropertyReader{Reader: NewReader[models.Property](db, apperr.EntityProperty)}
}

// ListByStatus filters by status; an empty status lists everything.
func (r *PropertyReader) ListByStatus(ctx context.Context, status models.PropertyStatus) ([]models.Property, error) {
	if status == "" {
		return r.GetAll(ctx)
	}
	out := make([]models.Property, 0)
	if err := r.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list properties by status %q: %w", status, err)
	}
	return out, nil
}
