package models

import "time"

type Review struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	User       User   `gorm:"foreignKey:UserID"`
	PropertyID uint   `gorm:"index;not null"`
	Rating     int    `gorm:"not null"` // 1..5
	Comment    string `gorm:"size:2000"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
