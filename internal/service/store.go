package service

import (
	"context"

	"cookbook/backend/internal/models"
)

// Store is the persistence boundary. Single-row operations are atomic; nothing
// spans documents except CreateRecipe and DeleteUser, which each run in one transaction.
// Lookups of missing rows return errors wrapping ErrNotFound.
type Store interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserCredentials(ctx context.Context, id uint, username, passwordHash string) error
	// DeleteUser removes the user row and the user's own relation lists. It
	// returns the ids of the user's recipes list as read inside the same
	// transaction, after the user row is locked by the delete.
	DeleteUser(ctx context.Context, id uint) (*models.User, []uint, error)

	// GetRecipe returns the recipe with Creator loaded when the creator still exists.
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	FindRecipeByName(ctx context.Context, name string) (*models.Recipe, error)
	// CreateRecipe inserts the recipe and appends it to its creator's recipes list.
	// The creator row is held for the transaction; a missing creator is ErrNotFound.
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe) error
	DeleteRecipe(ctx context.Context, id uint) (*models.Recipe, error)

	// ToggleRelation removes targetID from the owner's relation when present and
	// adds it otherwise, as one conditional operation. It reports whether it added.
	// Adding holds the target row for the transaction and fails with ErrNotFound
	// when the target does not exist.
	ToggleRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) (bool, error)
	HasRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) (bool, error)
	RemoveRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) error
	// RelationTargets lists the ids held in the owner's relation, in list order.
	RelationTargets(ctx context.Context, rel models.Relation, ownerID uint) ([]uint, error)
	// RelationOwners lists the users whose relation holds targetID.
	RelationOwners(ctx context.Context, rel models.Relation, targetID uint) ([]uint, error)
	// RelatedRecipes loads the existing recipes held in a recipes or favourites relation.
	RelatedRecipes(ctx context.Context, rel models.Relation, ownerID uint) ([]models.Recipe, error)
}
