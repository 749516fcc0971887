package repository

import (
	"rental-backend/internal/apperr"
	"rental-backend/internal/models"

	"gorm.io/gorm"
)

// Set groups the readers handed to the HTTP handlers.
type Set struct {
	Users      *UserReader
	Companies  *CompanyReader
	Properties *PropertyReader
	Bookings   *BookingReader
	Favorites  *FavoriteReader
	Reviews    *ReviewReader
	AuditLogs  *Reader[models.AuditLog]
}

func New(db *gorm.DB) *Set {
	return &Set{
		Users:      NewUserReader(db),
		Companies:  NewCompanyReader(db),
		Properties: NewPropertyReader(db),
		Bookings:   NewBookingReader(db),
		Favorites:  NewFavoriteReader(db),
		Reviews:    NewReviewReader(db),
		AuditLogs:  NewReader[models.AuditLog](db, apperr.EntityAuditLog),
	}
}
