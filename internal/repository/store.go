// Package repository implements service.Store on gorm. Relation lists are link
// tables keyed by (owner, target) with an index on the target column, so
// "who references X" is an index lookup.
package repository

import (
	"context"
	"errors"
	"fmt"

	"cookbook/backend/internal/models"
	"cookbook/backend/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type linkTable struct {
	table       string
	ownerCol    string
	targetCol   string
	targetTable string
	row         func(ownerID, targetID uint) any
	model       func() any
}

var links = map[models.Relation]linkTable{
	models.RelationRecipes: {
		table:       "user_recipes",
		ownerCol:    "user_id",
		targetCol:   "recipe_id",
		targetTable: "recipes",
		row:         func(o, t uint) any { return &models.UserRecipe{UserID: o, RecipeID: t} },
		model:       func() any { return &models.UserRecipe{} },
	},
	models.RelationFavourites: {
		table:       "user_favourites",
		ownerCol:    "user_id",
		targetCol:   "recipe_id",
		targetTable: "recipes",
		row:         func(o, t uint) any { return &models.UserFavourite{UserID: o, RecipeID: t} },
		model:       func() any { return &models.UserFavourite{} },
	},
	models.RelationFollowing: {
		table:       "user_follows",
		ownerCol:    "follower_id",
		targetCol:   "followee_id",
		targetTable: "users",
		row:         func(o, t uint) any { return &models.UserFollow{FollowerID: o, FolloweeID: t} },
		model:       func() any { return &models.UserFollow{} },
	},
}

func link(rel models.Relation) (linkTable, error) {
	l, ok := links[rel]
	if !ok {
		return linkTable{}, fmt.Errorf("unknown relation %q: %w", rel, service.ErrValidation)
	}
	return l, nil
}

// Store is a gorm-backed service.Store.
type Store struct {
	db *gorm.DB
}

var _ service.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps gorm errors onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, service.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, service.ErrUsernameTaken)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// lockRow takes a share lock on row id of table for the rest of tx and fails
// with gorm.ErrRecordNotFound when the row is gone. A concurrent delete of the
// row waits for tx, and tx waits for a delete already in progress.
// SQLite has no row locks; its single connection serializes transactions.
func lockRow(tx *gorm.DB, table string, id uint) error {
	var ids []uint
	err := tx.Table(table).
		Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		Where("id = ?", id).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// region --- Users ---

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error, "create user")
}

func (s *Store) UpdateUserCredentials(ctx context.Context, id uint, username, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"username": username, "password_hash": passwordHash})
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("update user %d", id))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, service.ErrNotFound)
	}
	return nil
}

// DeleteUser removes the user and every link row it owns, in one transaction.
// The recipes list is read after the user row is deleted, so a recipe created
// concurrently either committed first and is included or fails on the missing creator.
func (s *Store) DeleteUser(ctx context.Context, id uint) (*models.User, []uint, error) {
	var user models.User
	owned := []uint{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		err := tx.Model(&models.UserRecipe{}).
			Where("user_id = ?", id).
			Order("created_at, recipe_id").
			Pluck("recipe_id", &owned).Error
		if err != nil {
			return err
		}
		for _, l := range links {
			if err := tx.Where(l.ownerCol+" = ?", id).Delete(l.model()).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, translate(err, fmt.Sprintf("delete user %d", id))
	}
	return &user, owned, nil
}

// endregion

// region --- Recipes ---

func (s *Store) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Preload("Creator").First(&recipe, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("recipe %d", id))
	}
	return &recipe, nil
}

func (s *Store) FindRecipeByName(ctx context.Context, name string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Where("name = ?", name).Order("id").First(&recipe).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("recipe %q", name))
	}
	return &recipe, nil
}

// CreateRecipe inserts the recipe and its creator link; neither is kept if the other fails.
func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "users", recipe.CreatorID); err != nil {
			return err
		}
		if err := tx.Omit("Creator").Create(recipe).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRecipe{UserID: recipe.CreatorID, RecipeID: recipe.ID}).Error
	})
	return translate(err, "create recipe")
}

// UpdateRecipe writes the editable columns only; creator_id is never touched.
func (s *Store) UpdateRecipe(ctx context.Context, recipe *models.Recipe) error {
	res := s.db.WithContext(ctx).Model(recipe).
		Select("Name", "Country", "Ingredients", "Preparation").
		Updates(recipe)
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("update recipe %d", recipe.ID))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe %d: %w", recipe.ID, service.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Creator").First(&recipe, id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, fmt.Sprintf("delete recipe %d", id))
	}
	return &recipe, nil
}

// endregion

// region --- Relations ---

// ToggleRelation deletes the link when present and inserts it otherwise, in one
// transaction. The insert only happens while the target row is share-locked.
func (s *Store) ToggleRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) (bool, error) {
	l, err := link(rel)
	if err != nil {
		return false, err
	}

	var added bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(l.ownerCol+" = ? AND "+l.targetCol+" = ?", ownerID, targetID).
			Delete(l.model())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := lockRow(tx, l.targetTable, targetID); err != nil {
			return err
		}
		added = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(l.row(ownerID, targetID)).Error
	})
	if err != nil {
		return false, translate(err, fmt.Sprintf("toggle %s", rel))
	}
	return added, nil
}

func (s *Store) HasRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) (bool, error) {
	l, err := link(rel)
	if err != nil {
		return false, err
	}
	var count int64
	err = s.db.WithContext(ctx).Table(l.table).
		Where(l.ownerCol+" = ? AND "+l.targetCol+" = ?", ownerID, targetID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, fmt.Sprintf("lookup %s", rel))
	}
	return count > 0, nil
}

// RemoveRelation deletes the link if it exists. Removing an absent link is not an error.
func (s *Store) RemoveRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) error {
	l, err := link(rel)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Where(l.ownerCol+" = ? AND "+l.targetCol+" = ?", ownerID, targetID).
		Delete(l.model()).Error
	return translate(err, fmt.Sprintf("remove %s", rel))
}

func (s *Store) RelationTargets(ctx context.Context, rel models.Relation, ownerID uint) ([]uint, error) {
	l, err := link(rel)
	if err != nil {
		return nil, err
	}
	ids := []uint{}
	err = s.db.WithContext(ctx).Table(l.table).
		Where(l.ownerCol+" = ?", ownerID).
		Order("created_at, "+l.targetCol).
		Pluck(l.targetCol, &ids).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("list %s", rel))
	}
	return ids, nil
}

func (s *Store) RelationOwners(ctx context.Context, rel models.Relation, targetID uint) ([]uint, error) {
	l, err := link(rel)
	if err != nil {
		return nil, err
	}
	ids := []uint{}
	err = s.db.WithContext(ctx).Table(l.table).
		Where(l.targetCol+" = ?", targetID).
		Order(l.ownerCol).
		Pluck(l.ownerCol, &ids).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("owners of %s", rel))
	}
	return ids, nil
}

// RelatedRecipes loads the recipes of a recipes or favourites list in list order.
// Dangling links are skipped by the join.
func (s *Store) RelatedRecipes(ctx context.Context, rel models.Relation, ownerID uint) ([]models.Recipe, error) {
	if rel == models.RelationFollowing {
		return nil, fmt.Errorf("relation %q does not hold recipes: %w", rel, service.ErrValidation)
	}
	l, err := link(rel)
	if err != nil {
		return nil, err
	}
	recipes := []models.Recipe{}
	err = s.db.WithContext(ctx).
		Joins("JOIN "+l.table+" ON "+l.table+".recipe_id = recipes.id").
		Where(l.table+"."+l.ownerCol+" = ?", ownerID).
		Order(l.table + ".created_at, recipes.id").
		Find(&recipes).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("list %s", rel))
	}
	return recipes, nil
}

// endregion
