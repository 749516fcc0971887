package database

import (
	"fmt"

	"rental-backend/internal/config"
	"rental-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured database. Postgres is the production driver; sqlite is
// used for local runs and tests.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Property{},
		&models.Favorite{},
		&models.Booking{},
		&models.Review{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Bookings cancelled before cancelled_at existed carry no timestamp; backfill from updated_at.
	if db.Migrator().HasColumn(&models.Booking{}, "cancelled_at") {
		res := db.Exec("UPDATE bookings SET cancelled_at = updated_at WHERE status = ? AND cancelled_at IS NULL", models.BookingCancelled)
		if res.Error != nil {
			return fmt.Errorf("backfill cancelled_at: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			log.Info("backfilled cancelled_at", zap.Int64("rows", res.RowsAffected))
		}
	}

	log.Info("database migration completed")
	return nil
}
