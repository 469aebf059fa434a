package service

import "errors"

var (
	// ErrUnauthenticated means the credential is missing, invalid or names a user that no longer exists.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden means the caller is authenticated but may not mutate the resource.
	ErrForbidden = errors.New("not allowed")

	// ErrNotFound means the referenced user or recipe does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps input problems; the wrapping message says what to fix.
	ErrValidation = errors.New("invalid input")

	// ErrUsernameTaken is returned when a username belongs to another user.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrSelfSearch is the signal for a user searching their own profile.
	ErrSelfSearch = errors.New("do not search your profile")

	// ErrOwnRecipe is the signal for a user searching one of their own recipes.
	ErrOwnRecipe = errors.New("do not search your recipes")

	// ErrCleanupPartial marks a cascade in which some reference removals failed.
	ErrCleanupPartial = errors.New("cascade cleanup partially failed")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
