package handler

import (
	"io"
	"net/http"

	"cookbook/backend/internal/hub"

	"github.com/gin-gonic/gin"
)

// ToggleFollow godoc
// @Summary      Follow or unfollow a user
// @Description  Adds the user to the caller's following when absent and removes it when present.
// @Tags         relations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]interface{} "{"user": UserResponse|null, "auth": true, "following": true}"
// @Failure      400  {object}  ErrorResponse "Invalid ID or self-follow disabled"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Router       /users/{id}/follow [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	target, following, err := h.svc.ToggleFollow(c.Request.Context(), currentUserID(c), targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	// The target is gone when the toggle removed a dangling follow.
	if target == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil, "auth": true, "following": following})
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), target.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(profile), "auth": true, "following": following})
}

// ToggleFavourite godoc
// @Summary      Favourite or unfavourite a recipe
// @Description  Adds the recipe to the caller's favourites when absent and removes it when present, then redirects to it.
// @Tags         relations
// @Security     BearerAuth
// @Param        id   path      int  true  "Recipe ID"
// @Success      303  "Redirect to the recipe"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Recipe not found"
// @Router       /recipes/{id}/favourite [post]
func (h *Handler) ToggleFavourite(c *gin.Context) {
	recipeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.svc.ToggleFavourite(c.Request.Context(), currentUserID(c), recipeID); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, recipeLocation(recipeID))
}

// StreamEvents godoc
// @Summary      Stream notifications
// @Description  Server-sent events for new followers and favourited recipes of the caller.
// @Tags         relations
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string "event stream"
// @Failure      401  {object}  ErrorResponse
// @Router       /user/events [get]
func (h *Handler) StreamEvents(c *gin.Context) {
	userID := currentUserID(c)
	client := make(hub.Client, 16)
	h.hub.Subscribe(userID, client)
	defer h.hub.Unsubscribe(userID, client)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
