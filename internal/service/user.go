package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cookbook/backend/internal/logging"
	"cookbook/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Credentials carries a username and a plaintext password.
type Credentials struct {
	Username string
	Password string
}

func (s *Service) validateCredentials(in Credentials) error {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return fmt.Errorf("provide username and password: %w", ErrValidation)
	}
	if len(in.Password) < s.opts.MinPasswordLength {
		return fmt.Errorf("password must have at least %d characters: %w", s.opts.MinPasswordLength, ErrValidation)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// usernameFree fails with ErrUsernameTaken when username belongs to a user other than selfID.
func (s *Service) usernameFree(ctx context.Context, username string, selfID uint) error {
	existing, err := s.store.FindUserByUsername(ctx, username)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return fmt.Errorf("%q: %w", username, ErrUsernameTaken)
	}
	return nil
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, in Credentials) (*models.User, error) {
	if err := s.validateCredentials(in); err != nil {
		return nil, err
	}
	if err := s.usernameFree(ctx, in.Username, 0); err != nil {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: in.Username, PasswordHash: hashed}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("User registered.")
	return user, nil
}

// Authenticate checks a username and password. Any mismatch is ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, in Credentials) (*models.User, error) {
	user, err := s.store.FindUserByUsername(ctx, in.Username)
	if isNotFound(err) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// UpdateCredentials changes the caller's username and password. Relation lists are untouched.
func (s *Service) UpdateCredentials(ctx context.Context, userID uint, in Credentials) (*models.User, error) {
	if err := s.validateCredentials(in); err != nil {
		return nil, err
	}
	if err := s.usernameFree(ctx, in.Username, userID); err != nil {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUserCredentials(ctx, userID, in.Username, hashed); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, userID)
}

// UserProfile is a user together with its resolved relation lists.
type UserProfile struct {
	User       *models.User
	Recipes    []models.Recipe
	Favourites []models.Recipe
	Following  []uint
}

// Profile loads a user with its recipes, favourites and following ids.
func (s *Service) Profile(ctx context.Context, userID uint) (*UserProfile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recipes, err := s.store.RelatedRecipes(ctx, models.RelationRecipes, userID)
	if err != nil {
		return nil, err
	}
	favourites, err := s.store.RelatedRecipes(ctx, models.RelationFavourites, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.store.RelationTargets(ctx, models.RelationFollowing, userID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{User: user, Recipes: recipes, Favourites: favourites, Following: following}, nil
}

// UserView returns the profile of targetID and whether viewerID follows it.
func (s *Service) UserView(ctx context.Context, viewerID, targetID uint) (*UserProfile, bool, error) {
	profile, err := s.Profile(ctx, targetID)
	if err != nil {
		return nil, false, err
	}
	followed, err := s.store.HasRelation(ctx, models.RelationFollowing, viewerID, targetID)
	if err != nil {
		return nil, false, err
	}
	return profile, followed, nil
}

// SearchUser finds a user by exact username. Searching for oneself yields ErrSelfSearch.
func (s *Service) SearchUser(ctx context.Context, callerID uint, username string) (*UserProfile, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID == callerID {
		return nil, ErrSelfSearch
	}
	return s.Profile(ctx, user.ID)
}

// ResolveUser loads the user named by an authenticated id. A missing user is ErrUnauthenticated.
func (s *Service) ResolveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("user %d no longer exists: %w", userID, ErrUnauthenticated)
	}
	return user, err
}
