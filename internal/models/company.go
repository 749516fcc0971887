package models

import "time"

type Company struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null;unique"`
	Tier      string `gorm:"size:30;not null;default:basic"`
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
