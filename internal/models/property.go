package models

import "time"

type PropertyStatus string

const (
	PropertyAvailable   PropertyStatus = "available"
	PropertyUnavailable PropertyStatus = "unavailable"
	PropertyArchived    PropertyStatus = "archived"
)

// Property - a rentable unit listed by a company
type Property struct {
	ID            uint           `gorm:"primaryKey"`
	CompanyID     *uint          `gorm:"index"`
	Title         string         `gorm:"size:200;not null"`
	Address       string         `gorm:"size:255"`
	Status        PropertyStatus `gorm:"size:20;index;not null;default:available"`
	Amenities     []string       `gorm:"serializer:json"`
	PricePerNight float64        `gorm:"not null"`
	Description   string         `gorm:"size:1000"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
