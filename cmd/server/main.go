package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/article-voting-api/internal/api"
	"github.com/article-voting-api/internal/auth"
	"github.com/article-voting-api/internal/config"
	"github.com/article-voting-api/internal/database"
	"github.com/article-voting-api/internal/repository"
	"github.com/article-voting-api/internal/service"
	"github.com/article-voting-api/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting article voting API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to MongoDB. The store must be reachable at boot; this is
	// the only fatal startup dependency.
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	// Initialize repositories and the comment uniqueness index
	repos := repository.New(db)
	if err := repos.Comment.EnsureIndexes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to create comment indexes")
	}

	// Initialize services
	services := service.NewServices(repos, log)

	// Token verification is advisory; run anonymous-only when the
	// credentials file is missing or unusable.
	verifier, err := auth.NewFirebaseVerifier(context.Background(), cfg.Auth.CredentialsFile)
	if err != nil {
		log.Warn().Err(err).
			Str("credentials", cfg.Auth.CredentialsFile).
			Msg("Identity verification disabled, all requests run anonymous")
		verifier = nil
	}

	// Initialize router
	router := api.NewRouter(services, db, verifier, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close MongoDB connection")
	}

	log.Info().Msg("Server exited gracefully")
}
