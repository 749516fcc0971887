// Package testutil provides an in-memory database with a small fixture set for tests.
package testutil

import (
	"testing"
	"time"

	"rental-backend/internal/database"
	"rental-backend/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB returns a migrated sqlite database living for the duration of the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, zap.NewNop()))
	return db
}

type Fixtures struct {
	Company  models.Company
	Admin    models.User
	Member   models.User
	Other    models.User
	Loft     models.Property
	Cabin    models.Property
	Booking  models.Booking
	Past     models.Booking
	Favorite models.Favorite
	Review   models.Review
}

// Seed inserts one company, three users, two properties, two bookings of Member,
// one favorite and one review.
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{}
	f.Company = models.Company{Name: "Seaside Rentals", Tier: "premium", Address: "1 Harbour Rd"}
	require.NoError(t, db.Create(&f.Company).Error)

	f.Admin = models.User{Name: "Ada Admin", Email: "ada@example.com", PasswordHash: "x", Role: models.RoleAdmin, CompanyID: &f.Company.ID}
	f.Member = models.User{Name: "Mel Member", Email: "mel@example.com", PasswordHash: "x", Role: models.RoleMember, Tier: "basic", CompanyID: &f.Company.ID}
	f.Other = models.User{Name: "Otto Other", Email: "otto@example.com", PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(&f.Admin).Error)
	require.NoError(t, db.Create(&f.Member).Error)
	require.NoError(t, db.Create(&f.Other).Error)

	f.Loft = models.Property{CompanyID: &f.Company.ID, Title: "Harbour Loft", Status: models.PropertyAvailable, Amenities: []string{"wifi", "kitchen"}, PricePerNight: 120}
	f.Cabin = models.Property{CompanyID: &f.Company.ID, Title: "Pine Cabin", Status: models.PropertyUnavailable, Amenities: []string{"fireplace"}, PricePerNight: 80}
	require.NoError(t, db.Create(&f.Loft).Error)
	require.NoError(t, db.Create(&f.Cabin).Error)

	checkIn := time.Date(2026, 11, 1, 14, 0, 0, 0, time.UTC)
	f.Booking = models.Booking{UserID: f.Member.ID, PropertyID: f.Loft.ID, CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 3), Guests: 2, TotalPrice: 360, Status: models.BookingConfirmed}
	f.Past = models.Booking{UserID: f.Member.ID, PropertyID: f.Cabin.ID, CheckIn: checkIn.AddDate(0, -2, 0), CheckOut: checkIn.AddDate(0, -2, 2), Guests: 1, TotalPrice: 160, Status: models.BookingConfirmed}
	require.NoError(t, db.Create(&f.Booking).Error)
	require.NoError(t, db.Create(&f.Past).Error)

	f.Favorite = models.Favorite{UserID: f.Member.ID, PropertyID: f.Loft.ID}
	require.NoError(t, db.Create(&f.Favorite).Error)

	f.Review = models.Review{UserID: f.Member.ID, PropertyID: f.Loft.ID, Rating: 5, Comment: "Great view"}
	require.NoError(t, db.Create(&f.Review).Error)

	return f
}
