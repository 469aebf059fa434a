package handler

import (
	"net/http"
	"time"

	"cookbook/backend/internal/auth"
	"cookbook/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	Resolver       auth.Resolver
	RequestTimeout time.Duration
}

// NewRouter wires every route of the API.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	authenticated := auth.AuthMiddleware(cfg.Resolver)

	apiV1 := router.Group("/api/v1")
	{
		// Event streams are long-lived and skip the request timeout.
		apiV1.GET("/user/events", authenticated, h.StreamEvents)

		api := apiV1.Group("")
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.RegisterUser)
			authRoutes.POST("/login", h.LoginUser)
		}

		// Current user routes (protected)
		meRoutes := api.Group("/user")
		meRoutes.Use(authenticated)
		{
			meRoutes.GET("", h.GetMe)
			meRoutes.PUT("", h.UpdateMe)
			meRoutes.DELETE("", h.DeleteMe)
		}

		// User routes (protected)
		userRoutes := api.Group("/users")
		userRoutes.Use(authenticated)
		{
			userRoutes.GET("/search/:username", h.SearchUser)
			userRoutes.GET("/:id", h.GetUserByID)
			userRoutes.POST("/:id/follow", h.ToggleFollow)
		}

		// Recipe routes (protected)
		recipeRoutes := api.Group("/recipes")
		recipeRoutes.Use(authenticated)
		{
			recipeRoutes.POST("", h.CreateRecipe)
			recipeRoutes.GET("/search/:name", h.SearchRecipe)
			recipeRoutes.GET("/:id", h.GetRecipeByID)
			recipeRoutes.POST("/:id/favourite", h.ToggleFavourite)

			// Owner-only routes
			ownerOnly := auth.RecipeOwnerMiddleware(h.svc)
			recipeRoutes.PUT("/:id", ownerOnly, h.UpdateRecipe)
			recipeRoutes.DELETE("/:id", ownerOnly, h.DeleteRecipe)
		}
	}

	return router
}
