package models

import "time"

// Recipe represents a recipe authored by a single user.
type Recipe struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string   `gorm:"size:255;not null;index"`
	Country     string   `gorm:"size:255"`
	Ingredients []string `gorm:"serializer:json"`
	Preparation string

	// CreatorID is set once at creation and never updated.
	CreatorID uint  `gorm:"not null;index"`
	Creator   *User `gorm:"foreignKey:CreatorID"`
}
