package models

import "time"

// User represents a user in the system. Its relation lists live in the
// user_recipes, user_favourites and user_follows link tables.
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}
