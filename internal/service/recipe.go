package service

import (
	"context"
	"fmt"
	"strings"

	"cookbook/backend/internal/models"
)

// RecipeInput holds the editable fields of a recipe. The creator is never part of it.
type RecipeInput struct {
	Name        string
	Country     string
	Ingredients []string
	Preparation string
}

func (in RecipeInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("recipe name is required: %w", ErrValidation)
	}
	return nil
}

func (in RecipeInput) apply(r *models.Recipe) {
	r.Name = in.Name
	r.Country = in.Country
	r.Ingredients = in.Ingredients
	r.Preparation = in.Preparation
}

// CreateRecipe creates a recipe owned by creatorID and links it into the
// creator's recipes list as one unit.
func (s *Service) CreateRecipe(ctx context.Context, creatorID uint, in RecipeInput) (*models.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{CreatorID: creatorID}
	in.apply(recipe)
	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return recipe, nil
}

// UpdateRecipe replaces the editable fields of a recipe owned by callerID.
func (s *Service) UpdateRecipe(ctx context.Context, callerID, recipeID uint, in RecipeInput) (*models.Recipe, error) {
	if err := s.AuthorizeRecipe(ctx, callerID, recipeID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{ID: recipeID}
	in.apply(recipe)
	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return s.store.GetRecipe(ctx, recipeID)
}

// RecipeView returns the recipe with its creator resolved and whether it is
// among viewerID's favourites.
func (s *Service) RecipeView(ctx context.Context, viewerID, recipeID uint) (*models.Recipe, bool, error) {
	favourite, err := s.store.HasRelation(ctx, models.RelationFavourites, viewerID, recipeID)
	if err != nil {
		return nil, false, err
	}
	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, favourite, err
	}
	return recipe, favourite, nil
}

// SearchRecipe finds a recipe by exact name. A match authored by the caller
// yields ErrOwnRecipe instead of the recipe.
func (s *Service) SearchRecipe(ctx context.Context, callerID uint, name string) (*models.Recipe, error) {
	recipe, err := s.store.FindRecipeByName(ctx, name)
	if err != nil {
		return nil, err
	}
	own, err := s.store.HasRelation(ctx, models.RelationRecipes, callerID, recipe.ID)
	if err != nil {
		return nil, err
	}
	if own {
		return nil, ErrOwnRecipe
	}
	return recipe, nil
}
