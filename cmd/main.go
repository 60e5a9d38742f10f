package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sparkychildcharlie/tournament-engine/brackets"
	"github.com/sparkychildcharlie/tournament-engine/config"
	"github.com/sparkychildcharlie/tournament-engine/db"
	"github.com/sparkychildcharlie/tournament-engine/handlers"
	"github.com/sparkychildcharlie/tournament-engine/repositories"
	"github.com/sparkychildcharlie/tournament-engine/routes"
	"github.com/sparkychildcharlie/tournament-engine/services"
	"github.com/sparkychildcharlie/tournament-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	var archiveService *services.ArchiveService
	if cfg.ArchiveConfigured() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiveService = services.NewArchiveService(uploader)
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 archive storage not configured, completed tournaments will not be archived")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		participantRepo,
		resultRepo,
		standingRepo,
		archiveService,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := routes.InitRoutes(authHandler, tournamentHandler, webSocketHandler, cfg.JWTSecretKey)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	}
}
