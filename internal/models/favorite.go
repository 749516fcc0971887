package models

import "time"

type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_favorites_user_property;not null" json:"user_id"`
	PropertyID uint      `gorm:"uniqueIndex:idx_favorites_user_property;not null" json:"property_id"`
	Property   Property  `gorm:"foreignKey:PropertyID" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
