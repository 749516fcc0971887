package repository

import (
	"context"
	"fmt"
	"strings"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type UserReader struct {
	*Reader[models.User]
}

func NewUserReader(db *gorm.DB) *UserReader {
	return &UserReader{Reader: NewReader[models.User](db, apperr.EntityUser)}
}

// GetByEmail is used for existence checks, absence is a valid outcome.
func (r *UserReader) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return r.FindBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// UserProfile is a user joined with its company.
type UserProfile struct {
	UserID         uint
	Name           string
	Email          string
	Role           models.UserRole
	Tier           string
	CompanyID      *uint
	CompanyName    *string
	CompanyTier    *string
	CompanyAddress *string
}

const profileQuery = `
SELECT u.id AS user_id, u.name, u.email, u.role, u.tier, u.company_id,
       c.name AS company_name, c.tier AS company_tier, c.address AS company_address
FROM users u
LEFT JOIN companies c ON c.id = u.company_id
WHERE u.id = ?`

// GetProfile runs the profile join as a raw query. The id is always a bound parameter.
func (r *UserReader) GetProfile(ctx context.Context, id uint) (*UserProfile, error) {
	var rows []UserProfile
	if err := r.db.WithContext(ctx).Raw(profileQuery, id).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get user profile %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, r.notFound()
	}
	return &rows[0], nil
}
