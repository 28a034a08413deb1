package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ballotworks/electoral-api/internal/config"
	"github.com/ballotworks/electoral-api/internal/logger"
	"github.com/ballotworks/electoral-api/internal/server"
	"github.com/ballotworks/electoral-api/internal/storage/blob"
	"github.com/ballotworks/electoral-api/internal/storage/factory"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Server.LogLevel)
	log := logger.Get()

	log.Info("Starting Electoral API",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port)

	repos, err := factory.DefaultFactory().CreateContainer(cfg)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer repos.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The photo store is optional: without it the API runs, photo
	// endpoints answer with an error.
	photos, err := blob.NewPhotoStore(ctx, cfg)
	if err != nil {
		log.Warn("Photo store unavailable, photo endpoints disabled", "error", err)
		photos = nil
	}

	srv := server.New(cfg, repos, photos)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		log.Info("Received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
