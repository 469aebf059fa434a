package handler

import (
	"errors"
	"net/http"

	"cookbook/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// CredentialsInput defines the body of registration, login and credential updates.
type CredentialsInput struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

func (in CredentialsInput) toService() service.Credentials {
	return service.Credentials{Username: in.Username, Password: in.Password}
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body CredentialsInput true "Registration Info"
// @Success      201  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.svc.Register(c.Request.Context(), input.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with username and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body CredentialsInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (h *Handler) LoginUser(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.svc.Authenticate(c.Request.Context(), input.toService())
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the profile of the authenticated user with recipes, favourites and following.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"user": UserResponse, "auth": true, "message": "..."}"
// @Failure      401  {object}  ErrorResponse
// @Router       /user [get]
func (h *Handler) GetMe(c *gin.Context) {
	profile, err := h.svc.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(profile), "auth": true, "message": "You are permitted."})
}

// GetUserByID godoc
// @Summary      Get a user's profile by ID
// @Description  Retrieves a user's profile and whether the caller follows them.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]interface{} "{"user": UserResponse, "auth": true, "followed": false}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUserByID(c *gin.Context) {
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	profile, followed, err := h.svc.UserView(c.Request.Context(), currentUserID(c), targetID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"user": nil, "auth": true, "followed": false, "message": "This user does not exist."})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(profile), "auth": true, "followed": followed})
}

// SearchUser godoc
// @Summary      Search a user by username
// @Description  Exact-match lookup. Searching for yourself returns a message instead of the profile.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username path      string  true  "Username"
// @Success      200      {object}  map[string]interface{} "{"user": UserResponse|null, "auth": true, "message": "..."}"
// @Failure      401      {object}  ErrorResponse
// @Router       /users/search/{username} [get]
func (h *Handler) SearchUser(c *gin.Context) {
	profile, err := h.svc.SearchUser(c.Request.Context(), currentUserID(c), c.Param("username"))
	switch {
	case errors.Is(err, service.ErrSelfSearch):
		c.JSON(http.StatusOK, gin.H{"user": nil, "auth": true, "message": "Do not search your profile."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"user": nil, "auth": true, "message": "This user does not exist."})
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusOK, gin.H{"user": newUserResponse(profile), "auth": true})
	}
}

// UpdateMe godoc
// @Summary      Update current user's credentials
// @Description  Changes username and password. Recipes, favourites and following are kept.
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        input body CredentialsInput true "New credentials"
// @Success      303  "Redirect to /user"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /user [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Provide username and password."})
		return
	}

	if _, err := h.svc.UpdateCredentials(c.Request.Context(), currentUserID(c), input.toService()); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/api/v1/user")
}

// DeleteMe godoc
// @Summary      Delete current user
// @Description  Deletes the caller, their recipes, and every reference to them or their recipes.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"auth": false, "token": null, "message": "..."}"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user [delete]
func (h *Handler) DeleteMe(c *gin.Context) {
	userID := currentUserID(c)
	if _, err := h.svc.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	// Open event streams of the deleted account end here.
	h.hub.UnsubscribeAll(userID)

	c.JSON(http.StatusOK, gin.H{"auth": false, "token": nil, "message": "User has been deleted successfully."})
}

// endregion
