package service

import (
	"context"
	"errors"
	"fmt"

	"cookbook/backend/internal/logging"
	"cookbook/backend/internal/metrics"
	"cookbook/backend/internal/models"
)

// Toggle flips targetID in the owner's relation and reports whether it was added.
// Toggles for one owner are serialized; the flip itself is a single storage
// operation that also holds the target row, so adding fails with ErrNotFound
// once the target is deleted. Removing a dangling id always succeeds.
func (s *Service) Toggle(ctx context.Context, ownerID uint, rel models.Relation, targetID uint) (bool, error) {
	if !rel.Toggleable() {
		return false, fmt.Errorf("relation %q cannot be toggled: %w", rel, ErrValidation)
	}
	if rel == models.RelationFollowing && ownerID == targetID && !s.opts.AllowSelfFollow {
		return false, fmt.Errorf("cannot follow yourself: %w", ErrValidation)
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	added, err := s.store.ToggleRelation(ctx, rel, ownerID, targetID)
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", rel, err)
	}
	metrics.RecordToggle(string(rel), added)
	logging.Ctx(ctx).Debug().
		Str("relation", string(rel)).
		Uint("owner_id", ownerID).
		Uint("target_id", targetID).
		Bool("added", added).
		Msg("Relation toggled.")
	return added, nil
}

// ToggleFollow flips the follow of targetID by followerID and returns the target
// user. The user is nil when the target no longer exists and the toggle removed
// a dangling follow.
func (s *Service) ToggleFollow(ctx context.Context, followerID, targetID uint) (*models.User, bool, error) {
	following, err := s.Toggle(ctx, followerID, models.RelationFollowing, targetID)
	if err != nil {
		return nil, false, err
	}

	target, err := s.store.GetUser(ctx, targetID)
	if errors.Is(err, ErrNotFound) {
		return nil, following, nil
	}
	if err != nil {
		return nil, following, err
	}

	if following && targetID != followerID {
		follower, err := s.store.GetUser(ctx, followerID)
		if err == nil {
			s.publish(targetID, EventUserFollowed, FollowedEvent{
				FollowerID: follower.ID,
				Username:   follower.Username,
			})
		}
	}
	return target, following, nil
}

// ToggleFavourite flips recipeID in the user's favourites and reports whether it was added.
func (s *Service) ToggleFavourite(ctx context.Context, userID, recipeID uint) (bool, error) {
	added, err := s.Toggle(ctx, userID, models.RelationFavourites, recipeID)
	if err != nil || !added {
		return added, err
	}

	recipe, err := s.store.GetRecipe(ctx, recipeID)
	if err == nil && recipe.CreatorID != userID {
		s.publish(recipe.CreatorID, EventRecipeFavourited, FavouritedEvent{
			RecipeID: recipe.ID,
			UserID:   userID,
		})
	}
	return added, nil
}
