package repository

import (
	"context"
	"fmt"

	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

type CompanyReader struct {
	*Reader[models.Company]
}

func NewCompanyReader(db *gorm.DB) *CompanyReader {
	return &CompanyReader{Reader: NewReader[models.Company](db, apperr.EntityCompany)}
}

// Members lists the users of a company. The company must exist.
func (r *CompanyReader) Members(ctx context.Context, companyID uint) ([]models.User, error) {
	if _, err := r.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list company %d members: %w", companyID, err)
	}
	return users, nil
}
