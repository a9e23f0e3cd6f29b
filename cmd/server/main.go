// Package main is the entry point for the Selector instrument search and
// selection service. The application serves fuzzy instrument search over a
// SQLite-backed universe, filters results by wallet availability, and tracks
// per-session instrument selections with durable persistence.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
	"github.com/donkruger/share-transfer-template-sub000/internal/di"
	"github.com/donkruger/share-transfer-template-sub000/internal/server"
	"github.com/donkruger/share-transfer-template-sub000/pkg/logger"
)

// main orchestrates the system startup sequence:
// 1. Loads configuration from environment variables (.env file)
// 2. Initializes the logging system
// 3. Wires all dependencies via DI container (databases, repositories, services)
// 4. Updates configuration from the settings database
// 5. Restores sessions persisted by a previous run
// 6. Starts the background job scheduler
// 7. Starts the HTTP server for API endpoints
// 8. Waits for a shutdown signal and performs graceful shutdown
//
// The application uses a 4-database architecture:
// - universe.db: Searchable instrument universe
// - sessions.db: Sessions and persisted selection snapshots
// - config.db: Application configuration (settings)
// - cache.db: Ephemeral operational data (job history)
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Selector")

	// Wire all dependencies using the DI container. This initializes the
	// databases, repositories, services, and background jobs via constructor
	// injection.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// All four databases must be closed on exit so WAL checkpoints are
	// written and database integrity is maintained.
	defer container.Close()

	// Update config from the settings DB. Settings stored via the API take
	// precedence over environment variables, so threshold and TTL changes
	// made at runtime survive restarts without editing .env.
	if err := cfg.UpdateFromSettings(container.SettingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to update config from settings DB, using environment variables")
	}

	// Restore sessions persisted by a previous run. Selections come back
	// from their encoded snapshots; sessions past their TTL are removed by
	// the cleanup job shortly after startup.
	if restored, err := container.SessionRegistry.Restore(); err != nil {
		log.Warn().Err(err).Msg("Failed to restore persisted sessions")
	} else if restored > 0 {
		log.Info().Int("count", restored).Msg("Restored persisted sessions")
	}

	// Start the background job scheduler (session cleanup, WAL checkpoints,
	// universe refresh, backups).
	container.Scheduler.Start()
	log.Info().Msg("Job scheduler started")

	// Initialize HTTP server
	// Pass container to server so it can use all services.
	// The HTTP server provides REST API endpoints for:
	// - Instrument search (fuzzy matching, wallet filtering, live search)
	// - Session management (create, list, delete, per-session thresholds)
	// - Selection tracking (add, remove, clear, summaries)
	// - Universe management (import, reload, stats)
	// - Settings management and system operations (health, backups, jobs)
	// - Server-sent event stream of domain events
	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	// Start server in goroutine so it doesn't block signal handling below.
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	// The application blocks here until it receives SIGINT (Ctrl+C) or
	// SIGTERM (kill command).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler first so no new job starts mid-shutdown.
	// In-progress jobs run to completion.
	container.Scheduler.Stop()
	log.Info().Msg("Job scheduler stopped")

	// Graceful shutdown
	// The HTTP server is given up to 10 seconds to finish processing
	// in-flight requests before being forced to stop.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
