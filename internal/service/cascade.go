package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cookbook/backend/internal/logging"
	"cookbook/backend/internal/metrics"
	"cookbook/backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// CleanupFailure is one reference removal that did not succeed.
type CleanupFailure struct {
	Relation models.Relation
	OwnerID  uint
	TargetID uint
	Err      error
}

// CleanupReport aggregates the outcome of a cascade.
type CleanupReport struct {
	mu sync.Mutex

	// Removed counts dangling references removed, per relation.
	Removed map[models.Relation]int
	// RecipesDeleted lists recipes deleted transitively by a user deletion.
	RecipesDeleted []uint
	Failures       []CleanupFailure
}

func newCleanupReport() *CleanupReport {
	return &CleanupReport{Removed: make(map[models.Relation]int)}
}

func (r *CleanupReport) removed(rel models.Relation) {
	r.mu.Lock()
	r.Removed[rel]++
	r.mu.Unlock()
}

func (r *CleanupReport) fail(f CleanupFailure) {
	r.mu.Lock()
	r.Failures = append(r.Failures, f)
	r.mu.Unlock()
}

// Err returns nil when every removal succeeded, otherwise an error wrapping
// ErrCleanupPartial and each individual failure.
func (r *CleanupReport) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, fmt.Errorf("%w: %d removals failed", ErrCleanupPartial, len(r.Failures)))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s owner=%d target=%d: %w", f.Relation, f.OwnerID, f.TargetID, f.Err))
	}
	return errors.Join(errs...)
}

// DeleteRecipe deletes a recipe owned by callerID and removes it from its
// creator's recipes and from every favourites set. Cleanup failures are
// reported, never returned as the error.
func (s *Service) DeleteRecipe(ctx context.Context, recipeID, callerID uint) (*models.Recipe, *CleanupReport, error) {
	if err := s.AuthorizeRecipe(ctx, callerID, recipeID); err != nil {
		return nil, nil, err
	}

	recipe, err := s.store.DeleteRecipe(ctx, recipeID)
	if err != nil {
		return nil, nil, err
	}

	cctx, cancel := s.cleanupContext(ctx)
	defer cancel()

	report := newCleanupReport()
	s.removeReferences(cctx, report, models.RelationRecipes, recipeID)
	s.removeReferences(cctx, report, models.RelationFavourites, recipeID)
	s.logReport(ctx, report, "recipe", recipeID)
	return recipe, report, nil
}

// DeleteUser deletes the user and its own relation lists, removes it from every
// following set and deletes every recipe it authored along with their favourites.
// It fails only when the user record itself cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, userID uint) (*CleanupReport, error) {
	_, owned, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cctx, cancel := s.cleanupContext(ctx)
	defer cancel()

	report := newCleanupReport()
	s.removeReferences(cctx, report, models.RelationFollowing, userID)

	for _, recipeID := range owned {
		_, err := s.store.DeleteRecipe(cctx, recipeID)
		switch {
		case errors.Is(err, ErrNotFound):
			// Already gone; its favourites are still purged below.
		case err != nil:
			report.fail(CleanupFailure{Relation: models.RelationRecipes, OwnerID: userID, TargetID: recipeID, Err: err})
			continue
		default:
			report.RecipesDeleted = append(report.RecipesDeleted, recipeID)
		}
		s.removeReferences(cctx, report, models.RelationFavourites, recipeID)
	}

	s.logReport(ctx, report, "user", userID)
	return report, nil
}

// removeReferences removes targetID from every owner's rel list, concurrently
// and bounded by the configured cleanup concurrency. It waits for all removals.
func (s *Service) removeReferences(ctx context.Context, report *CleanupReport, rel models.Relation, targetID uint) {
	owners, err := s.store.RelationOwners(ctx, rel, targetID)
	if err != nil {
		report.fail(CleanupFailure{Relation: rel, TargetID: targetID, Err: err})
		metrics.RecordCascade(string(rel), 0, 1)
		return
	}

	var removed, failed int
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.opts.CleanupConcurrency)
	for _, ownerID := range owners {
		g.Go(func() error {
			err := s.store.RemoveRelation(ctx, rel, ownerID, targetID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && !errors.Is(err, ErrNotFound) {
				failed++
				report.fail(CleanupFailure{Relation: rel, OwnerID: ownerID, TargetID: targetID, Err: err})
				return nil
			}
			removed++
			report.removed(rel)
			return nil
		})
	}
	_ = g.Wait()

	metrics.RecordCascade(string(rel), removed, failed)
}

func (s *Service) logReport(ctx context.Context, report *CleanupReport, kind string, id uint) {
	log := logging.Ctx(ctx)
	if err := report.Err(); err != nil {
		log.Error().Err(err).
			Str("deleted", kind).
			Uint("id", id).
			Int("failures", len(report.Failures)).
			Msg("Cascade cleanup incomplete.")
		return
	}
	log.Info().
		Str("deleted", kind).
		Uint("id", id).
		Int("recipes_deleted", len(report.RecipesDeleted)).
		Msg("Cascade cleanup finished.")
}
