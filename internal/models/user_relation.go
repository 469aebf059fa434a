package models

import "time"

// Relation names one of a user's relation lists.
type Relation string

const (
	// RelationRecipes is the ordered list of recipes the user authored.
	RelationRecipes Relation = "recipes"

	// RelationFavourites is the set of recipes the user favourited.
	RelationFavourites Relation = "favourites"

	// RelationFollowing is the set of users the user follows.
	RelationFollowing Relation = "following"
)

// Toggleable reports whether the relation is flipped by the toggle endpoints.
// The recipes list is owned by the recipe lifecycle.
func (r Relation) Toggleable() bool {
	return r == RelationFavourites || r == RelationFollowing
}

// UserRecipe links a user to a recipe they authored.
// The primary key is a composite of (UserID, RecipeID) to ensure uniqueness.
type UserRecipe struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	RecipeID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

// UserFavourite links a user to a recipe they favourited.
type UserFavourite struct {
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	RecipeID  uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

// UserFollow links a follower to the user they follow.
type UserFollow struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false"`
	FolloweeID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time
}
