package handler

import (
	"errors"
	"net/http"

	"cookbook/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// GetRecipeByID godoc
// @Summary      Get a single recipe by ID
// @Description  Retrieves a recipe with its creator and whether it is one of the caller's favourites.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Recipe ID"
// @Success      200  {object}  map[string]interface{} "{"recipe": RecipeResponse|null, "favourite": false, "auth": true}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes/{id} [get]
func (h *Handler) GetRecipeByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, favourite, err := h.svc.RecipeView(c.Request.Context(), currentUserID(c), id)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"recipe": nil, "favourite": favourite, "auth": true})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": newRecipeResponse(recipe), "favourite": favourite, "auth": true})
}

// SearchRecipe godoc
// @Summary      Search a recipe by name
// @Description  Exact-match lookup that redirects to the recipe. Your own recipes are not returned.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        name path      string  true  "Recipe name"
// @Success      200  {object}  map[string]interface{} "{"recipe": null, "auth": true, "message": "..."}"
// @Success      303  "Redirect to the recipe"
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes/search/{name} [get]
func (h *Handler) SearchRecipe(c *gin.Context) {
	recipe, err := h.svc.SearchRecipe(c.Request.Context(), currentUserID(c), c.Param("name"))
	switch {
	case errors.Is(err, service.ErrOwnRecipe):
		c.JSON(http.StatusOK, gin.H{"recipe": nil, "auth": true, "message": "Do not search your recipes."})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"recipe": nil, "auth": true, "message": "Recipe does not exist here."})
	case err != nil:
		respondError(c, err)
	default:
		c.Redirect(http.StatusSeeOther, recipeLocation(recipe.ID))
	}
}

// CreateRecipe godoc
// @Summary      Create a new recipe
// @Description  Creates a recipe owned by the caller and adds it to their recipes.
// @Tags         recipes
// @Accept       json
// @Security     BearerAuth
// @Param        recipe body RecipeInput true "Recipe"
// @Success      303  "Redirect to the new recipe"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /recipes [post]
func (h *Handler) CreateRecipe(c *gin.Context) {
	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	recipe, err := h.svc.CreateRecipe(c.Request.Context(), currentUserID(c), input.toService())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, recipeLocation(recipe.ID))
}

// UpdateRecipe godoc
// @Summary      Update a recipe
// @Description  Replaces name, country, ingredients and preparation. Only the creator may update.
// @Tags         recipes
// @Accept       json
// @Security     BearerAuth
// @Param        id     path int         true "Recipe ID"
// @Param        recipe body RecipeInput true "Recipe"
// @Success      303  "Redirect to the recipe"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id} [put]
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.svc.UpdateRecipe(c.Request.Context(), currentUserID(c), id, input.toService()); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, recipeLocation(id))
}

// DeleteRecipe godoc
// @Summary      Delete a recipe
// @Description  Deletes a recipe and removes it from every user's recipes and favourites. Only the creator may delete.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Recipe ID"
// @Success      200  {object}  RecipeResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /recipes/{id} [delete]
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, _, err := h.svc.DeleteRecipe(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}
