// Package service holds the relationship-consistency core: the ownership gate,
// the relation toggle, cascade cleanup and the recipe lifecycle, plus the
// identity operations the HTTP layer needs.
package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Event names published through the Notifier.
const (
	EventUserFollowed     = "user.followed"
	EventRecipeFavourited = "recipe.favourited"
)

// FollowedEvent is sent to a user when someone starts following them.
type FollowedEvent struct {
	FollowerID uint   `json:"follower_id"`
	Username   string `json:"username"`
}

// FavouritedEvent is sent to a recipe's creator when someone favourites it.
type FavouritedEvent struct {
	RecipeID uint `json:"recipe_id"`
	UserID   uint `json:"user_id"`
}

// Notifier delivers an event to a single user. Implementations must not block.
type Notifier interface {
	Publish(userID uint, event string, payload any)
}

// Options tunes the service. Zero values are replaced by defaults in New.
type Options struct {
	AllowSelfFollow    bool
	MinPasswordLength  int
	BcryptCost         int
	CleanupConcurrency int
	CleanupTimeout     time.Duration
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		AllowSelfFollow:    true,
		MinPasswordLength:  8,
		BcryptCost:         bcrypt.DefaultCost,
		CleanupConcurrency: 8,
		CleanupTimeout:     30 * time.Second,
	}
}

type Service struct {
	store    Store
	opts     Options
	notifier Notifier
	locks    ownerLocks
}

// New creates a Service over store. notifier may be nil.
func New(store Store, opts Options, notifier Notifier) *Service {
	def := DefaultOptions()
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = def.MinPasswordLength
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = def.BcryptCost
	}
	if opts.CleanupConcurrency <= 0 {
		opts.CleanupConcurrency = def.CleanupConcurrency
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = def.CleanupTimeout
	}
	return &Service{store: store, opts: opts, notifier: notifier}
}

func (s *Service) publish(userID uint, event string, payload any) {
	if s.notifier != nil {
		s.notifier.Publish(userID, event, payload)
	}
}

// cleanupContext detaches cleanup from request cancellation and bounds it.
func (s *Service) cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.CleanupTimeout)
}
