package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookbook/backend/internal/auth"
	"cookbook/backend/internal/config"
	"cookbook/backend/internal/database"
	"cookbook/backend/internal/handler"
	"cookbook/backend/internal/hub"
	"cookbook/backend/internal/logging"
	"cookbook/backend/internal/repository"
	"cookbook/backend/internal/service"
	"cookbook/backend/pkg/jwt"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "cookbook/backend/docs" // This is important for swag to find the generated docs
)

// @title           Cookbook API
// @version         1.0
// @description     Recipes, favourites and follows between users.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration.")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	// Connect to the database
	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database.")
	}

	events := hub.NewHub()
	svc := service.New(repository.New(db), service.Options{
		AllowSelfFollow:    cfg.AllowSelfFollow,
		MinPasswordLength:  cfg.MinPasswordLength,
		BcryptCost:         cfg.BcryptCost,
		CleanupConcurrency: cfg.CleanupConcurrency,
		CleanupTimeout:     cfg.CleanupTimeout,
	}, events)
	tokens := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	router := handler.NewRouter(handler.New(svc, tokens, events), handler.RouterConfig{
		Resolver:       auth.TokenResolver{Tokens: tokens, Users: svc},
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Server is running.")
		logging.Info().Msgf("Swagger UI is available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed.")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.CleanupTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed.")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
