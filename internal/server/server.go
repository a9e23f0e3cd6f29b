// Package server provides the HTTP server and routing for the instrument
// search and selection service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/config"
	"github.com/donkruger/share-transfer-template-sub000/internal/di"
	searchhandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/search/handlers"
	selectionhandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/selection/handlers"
	sessionhandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions/handlers"
	settingshandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/settings/handlers"
	universehandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/universe/handlers"
	wallethandlers "github.com/donkruger/share-transfer-template-sub000/internal/modules/wallets/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.Container)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Unified events stream (SSE) - must be before other routes for proper handling
		eventsStreamHandler := NewEventsStreamHandler(s.container.EventBus, s.log)
		r.Get("/events/stream", eventsStreamHandler.ServeHTTP)

		// System monitoring and operations
		systemHandlers := s.systemHandlers
		r.Route("/system", func(r chi.Router) {
			// Status and monitoring
			r.Get("/status", systemHandlers.HandleSystemStatus)
			r.Get("/metrics", systemHandlers.HandleSearchMetrics)
			r.Get("/database/stats", systemHandlers.HandleDatabaseStats)
			r.Get("/disk", systemHandlers.HandleDiskUsage)

			// Job history and manual triggers
			r.Get("/jobs", systemHandlers.HandleJobsStatus)
			r.Post("/jobs/session-cleanup", systemHandlers.HandleTriggerSessionCleanup)
			r.Post("/jobs/universe-refresh", systemHandlers.HandleTriggerUniverseRefresh)
			r.Post("/jobs/wal-checkpoint", systemHandlers.HandleTriggerWALCheckpoint)
			r.Post("/jobs/backup", systemHandlers.HandleTriggerBackup)
			r.Post("/jobs/backup-rotation", systemHandlers.HandleTriggerBackupRotation)

			// Backup archives
			r.Get("/backups", systemHandlers.HandleListBackups)
		})

		// Search module
		searchHandler := searchhandlers.NewHandler(s.container.SearchService, s.log)
		searchHandler.RegisterRoutes(r)

		// Universe module
		universeHandler := universehandlers.NewHandler(
			s.container.UniverseRepo,
			s.container.UniverseImporter,
			s.container.UniverseCache,
			s.container.EventManager,
			s.log,
		)
		universeHandler.RegisterRoutes(r)

		// Wallets module
		walletHandler := wallethandlers.NewHandler(s.container.WalletEngine, s.log)
		walletHandler.RegisterRoutes(r)

		// Settings module
		settingsHandler := settingshandlers.NewHandler(s.container.SettingsRepo, s.container.EventManager, s.log)
		settingsHandler.RegisterRoutes(r)

		// Sessions module; selection routes nest under /sessions/{id}/selections
		selectionHandler := selectionhandlers.NewHandler(s.container.SessionRegistry, s.container.EventManager, s.log)
		sessionHandler := sessionhandlers.NewHandler(s.container.SessionRegistry, s.container.SearchService, selectionHandler, s.log)
		sessionHandler.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
