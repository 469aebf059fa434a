package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cookbook/backend/internal/auth"
	"cookbook/backend/internal/hub"
	"cookbook/backend/internal/logging"
	"cookbook/backend/internal/models"
	"cookbook/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID uint) (string, error)
}

// Handler serves the HTTP API over the service.
type Handler struct {
	svc    *service.Service
	tokens TokenIssuer
	hub    *hub.Hub
}

func New(svc *service.Service, tokens TokenIssuer, h *hub.Hub) *Handler {
	return &Handler{svc: svc, tokens: tokens, hub: h}
}

// region --- DTOs ---

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// MessageResponse carries a user-facing message.
type MessageResponse struct {
	Message string `json:"message" example:"You are not allowed to update this recipe."`
}

// CreatorResponse is the resolved creator of a recipe.
type CreatorResponse struct {
	ID       uint   `json:"id" example:"2"`
	Username string `json:"username" example:"bob"`
}

// RecipeResponse defines the structure for a recipe.
type RecipeResponse struct {
	ID          uint             `json:"id" example:"100"`
	Name        string           `json:"name" example:"Carbonara"`
	Country     string           `json:"country" example:"Italy"`
	Ingredients []string         `json:"ingredients"`
	Preparation string           `json:"preparation"`
	CreatorID   uint             `json:"creator_id" example:"2"`
	Creator     *CreatorResponse `json:"creator,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// UserResponse defines the structure for a user profile. The password is never included.
type UserResponse struct {
	ID         uint             `json:"id" example:"1"`
	Username   string           `json:"username" example:"alice"`
	CreatedAt  time.Time        `json:"created_at"`
	Recipes    []RecipeResponse `json:"recipes"`
	Favourites []RecipeResponse `json:"favourites"`
	Following  []uint           `json:"following"`
}

// RecipeInput defines the body of recipe creation and update.
type RecipeInput struct {
	Name        string   `json:"name" binding:"required" example:"Carbonara"`
	Country     string   `json:"country" example:"Italy"`
	Ingredients []string `json:"ingredients"`
	Preparation string   `json:"preparation" example:"Boil the pasta..."`
}

func (in RecipeInput) toService() service.RecipeInput {
	return service.RecipeInput{
		Name:        in.Name,
		Country:     in.Country,
		Ingredients: in.Ingredients,
		Preparation: in.Preparation,
	}
}

func newRecipeResponse(r *models.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Country:     r.Country,
		Ingredients: r.Ingredients,
		Preparation: r.Preparation,
		CreatorID:   r.CreatorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if resp.Ingredients == nil {
		resp.Ingredients = []string{}
	}
	if r.Creator != nil {
		resp.Creator = &CreatorResponse{ID: r.Creator.ID, Username: r.Creator.Username}
	}
	return resp
}

func newRecipeResponses(recipes []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeResponse(&recipes[i]))
	}
	return out
}

func newUserResponse(p *service.UserProfile) UserResponse {
	following := p.Following
	if following == nil {
		following = []uint{}
	}
	return UserResponse{
		ID:         p.User.ID,
		Username:   p.User.Username,
		CreatedAt:  p.User.CreatedAt,
		Recipes:    newRecipeResponses(p.Recipes),
		Favourites: newRecipeResponses(p.Favourites),
		Following:  following,
	}
}

// endregion

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	id, _ := auth.CurrentUserID(c)
	return id
}

func recipeLocation(id uint) string {
	return "/api/v1/recipes/" + strconv.FormatUint(uint64(id), 10)
}

// notFoundMessage names the missing resource by route instead of echoing the
// wrapped error, which carries internal ids and storage context.
func notFoundMessage(c *gin.Context) string {
	if strings.Contains(c.FullPath(), "/recipes") {
		return "Recipe not found"
	}
	return "User not found"
}

// respondError maps service errors onto HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"auth": false, "error": "Invalid or missing token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, MessageResponse{Message: "You are not allowed to update this recipe."})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "User name is already taken."})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundMessage(c)})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Request timed out"})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed.")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
