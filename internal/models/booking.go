package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          uint          `gorm:"primaryKey"`
	UserID      uint          `gorm:"index;not null"`
	PropertyID  uint          `gorm:"index;not null"`
	Property    Property      `gorm:"foreignKey:PropertyID"`
	CheckIn     time.Time     `gorm:"not null"`
	CheckOut    time.Time     `gorm:"not null"`
	Guests      int           `gorm:"not null;default:1"`
	TotalPrice  float64       `gorm:"not null"`
	Status      BookingStatus `gorm:"size:20;index;not null;default:pending"`
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
