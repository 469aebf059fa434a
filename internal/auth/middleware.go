package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cookbook/backend/internal/models"
	"cookbook/backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	userKey   = "user"
	userIDKey = "userID"
)

// Resolver maps an opaque credential to the user it identifies.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*models.User, error)
}

// TokenParser extracts a user id from a signed token.
type TokenParser interface {
	ParseToken(token string) (uint, error)
}

// UserLoader loads the user behind an authenticated id.
type UserLoader interface {
	ResolveUser(ctx context.Context, userID uint) (*models.User, error)
}

// TokenResolver resolves JWTs to users that still exist.
type TokenResolver struct {
	Tokens TokenParser
	Users  UserLoader
}

func (r TokenResolver) Resolve(ctx context.Context, credential string) (*models.User, error) {
	if credential == "" {
		return nil, service.ErrUnauthenticated
	}
	id, err := r.Tokens.ParseToken(credential)
	if err != nil {
		return nil, errors.Join(service.ErrUnauthenticated, err)
	}
	return r.Users.ResolveUser(ctx, id)
}

// credential reads "Authorization: Bearer <token>", falling back to a bare "token" header.
func credential(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.GetHeader("token")
}

// AuthMiddleware rejects requests without a valid credential and stores the
// resolved user and its id in the context.
func AuthMiddleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.Resolve(c.Request.Context(), credential(c))
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"auth": false, "error": "Invalid or missing token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}

		c.Set(userKey, user)
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
