package service

import (
	"context"
	"fmt"
)

type authorizedRecipeKey struct{}

type authorizedRecipe struct {
	userID   uint
	recipeID uint
}

// WithAuthorizedRecipe marks ctx as having passed AuthorizeRecipe for userID
// on recipeID. Only call it with the result of a successful check.
func WithAuthorizedRecipe(ctx context.Context, userID, recipeID uint) context.Context {
	return context.WithValue(ctx, authorizedRecipeKey{}, authorizedRecipe{userID: userID, recipeID: recipeID})
}

// RecipeAuthorized reports whether ctx carries a passed check for exactly this user and recipe.
func RecipeAuthorized(ctx context.Context, userID, recipeID uint) bool {
	v, ok := ctx.Value(authorizedRecipeKey{}).(authorizedRecipe)
	return ok && v == authorizedRecipe{userID: userID, recipeID: recipeID}
}

// AuthorizeRecipe checks that userID created recipeID. It returns an error
// wrapping ErrNotFound when the recipe is missing and ErrForbidden when the
// caller is not its creator. A check already recorded on ctx is not repeated.
func (s *Service) AuthorizeRecipe(ctx context.Context, userID, recipeID uint) error {
	if RecipeAuthorized(ctx, userID, recipeID) {
		return nil
	}
	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.CreatorID != userID {
		return fmt.Errorf("recipe %d: %w", recipeID, ErrForbidden)
	}
	return nil
}

// IsOwner reports whether userID created recipeID. Any lookup failure denies.
func (s *Service) IsOwner(ctx context.Context, userID, recipeID uint) bool {
	return s.AuthorizeRecipe(ctx, userID, recipeID) == nil
}
