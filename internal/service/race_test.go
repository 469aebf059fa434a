package service_test

import (
	"context"
	"testing"

	"cookbook/backend/internal/models"
	"cookbook/backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pausingStore holds ToggleRelation and CreateRecipe until released, so a
// delete can run to completion while a write is in flight.
type pausingStore struct {
	service.Store
	reached chan struct{}
	release chan struct{}
}

func newPausingStore(inner service.Store) *pausingStore {
	return &pausingStore{Store: inner, reached: make(chan struct{}), release: make(chan struct{})}
}

func (s *pausingStore) wait() {
	close(s.reached)
	<-s.release
}

func (s *pausingStore) ToggleRelation(ctx context.Context, rel models.Relation, ownerID, targetID uint) (bool, error) {
	s.wait()
	return s.Store.ToggleRelation(ctx, rel, ownerID, targetID)
}

func (s *pausingStore) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	s.wait()
	return s.Store.CreateRecipe(ctx, recipe)
}

// interleave starts write, runs del once write reached the store and then lets write finish.
func interleave(t *testing.T, ps *pausingStore, write func() error, del func()) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- write() }()

	<-ps.reached
	del()
	close(ps.release)
	return <-done
}

func TestWritesRacingDeletesLeaveNoDanglingReferences(t *testing.T) {
	t.Run("favourite during recipe deletion", func(t *testing.T) {
		f := newFixture(t, testOptions())
		alice := f.register(t, "alice")
		bob := f.register(t, "bob")
		r := f.recipe(t, bob.ID, "borscht")

		ps := newPausingStore(f.store)
		racing := service.New(ps, testOptions(), nil)

		err := interleave(t, ps,
			func() error {
				_, err := racing.ToggleFavourite(f.ctx, alice.ID, r.ID)
				return err
			},
			func() {
				_, _, err := f.svc.DeleteRecipe(f.ctx, r.ID, bob.ID)
				require.NoError(t, err)
			})

		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Empty(t, f.targets(t, models.RelationFavourites, alice.ID))
	})

	t.Run("follow during user deletion", func(t *testing.T) {
		f := newFixture(t, testOptions())
		alice := f.register(t, "alice")
		carol := f.register(t, "carol")

		ps := newPausingStore(f.store)
		racing := service.New(ps, testOptions(), nil)

		err := interleave(t, ps,
			func() error {
				_, _, err := racing.ToggleFollow(f.ctx, alice.ID, carol.ID)
				return err
			},
			func() {
				_, err := f.svc.DeleteUser(f.ctx, carol.ID)
				require.NoError(t, err)
			})

		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Empty(t, f.targets(t, models.RelationFollowing, alice.ID))
	})

	t.Run("recipe creation during creator deletion", func(t *testing.T) {
		f := newFixture(t, testOptions())
		bob := f.register(t, "bob")

		ps := newPausingStore(f.store)
		racing := service.New(ps, testOptions(), nil)

		err := interleave(t, ps,
			func() error {
				_, err := racing.CreateRecipe(f.ctx, bob.ID, service.RecipeInput{Name: "orphan stew"})
				return err
			},
			func() {
				_, err := f.svc.DeleteUser(f.ctx, bob.ID)
				require.NoError(t, err)
			})

		assert.ErrorIs(t, err, service.ErrNotFound)
		_, err = f.store.FindRecipeByName(f.ctx, "orphan stew")
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
