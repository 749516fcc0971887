package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type FavoriteReader struct {
	*Reader[models.Favorite]
}

func NewFavoriteReader(db *gorm.DB) *FavoriteReader {
	return &FavoriteReader{Reader: NewReader[models.Favorite](db, apperr.EntityFavorite)}
}

// In returns a reader bound to tx.
func (r *FavoriteReader) In(tx *gorm.DB) *FavoriteReader {
	return NewFavoriteReader(tx)
}

func (r *FavoriteReader) ListByUser(ctx context.Context, userID uint) ([]models.Favorite, error) {
	out := make([]models.Favorite, 0)
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites of user %d: %w", userID, err)
	}
	return out, nil
}

// FindPair looks up the favorite linking a user and a property, absence is not an error.
func (r *FavoriteReader) FindPair(ctx context.Context, userID, propertyID uint) (*models.Favorite, bool, error) {
	var fav models.Favorite
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Limit(1).
		Find(&fav)
	if res.Error != nil {
		return nil, false, fmt.Errorf("find favorite (%d,%d): %w", userID, propertyID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	return &fav, true, nil
}
