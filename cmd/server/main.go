// Package main is the entry point for the autopress server: the
// orchestration core behind batch content generation, destination
// routing, staggered publishing and performance tracking.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/calyptra/autopress/internal/config"
	"github.com/calyptra/autopress/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("server failed: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"generation_workers", cfg.Pipeline.GenerationWorkers,
		"publishing_workers", cfg.Pipeline.PublishingWorkers,
		"tracking_workers", cfg.Pipeline.TrackingWorkers)

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	app.runner.Start()
	return app.startHTTPServer(ctx)
}
