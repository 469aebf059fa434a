package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"cookbook/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// OwnershipGate decides whether a user may mutate a recipe.
type OwnershipGate interface {
	AuthorizeRecipe(ctx context.Context, userID, recipeID uint) error
}

// RecipeOwnerMiddleware only lets the creator of the recipe named by the :id
// parameter through and records the passed check on the request context.
// It must be used AFTER AuthMiddleware.
func RecipeOwnerMiddleware(gate OwnershipGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := CurrentUserID(c)
		if !exists {
			// This should not happen if AuthMiddleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		recipeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe ID"})
			return
		}

		err = gate.AuthorizeRecipe(c.Request.Context(), userID, uint(recipeID))
		switch {
		case err == nil:
			c.Request = c.Request.WithContext(service.WithAuthorizedRecipe(c.Request.Context(), userID, uint(recipeID)))
			c.Next()
		case errors.Is(err, service.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		case errors.Is(err, service.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You are not allowed to update this recipe."})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify recipe owner"})
		}
	}
}
