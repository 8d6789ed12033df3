// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

// Package main is the entry point for the Menucast server.
//
// Menucast keeps a local cache of a restaurant's point-of-sale catalog
// and serves it as a guest-facing menu. The server periodically pulls the
// catalog from the POS API, merges it into an embedded DuckDB store while
// preserving locally owned state (sold-out flags, display and combo
// category overlays), and exposes the result through a REST API with
// ETag-based caching on the public menu.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB and run schema migrations
//  3. Catalog client: POS API client with rate limiting and a circuit breaker
//  4. Sync engine and scheduler: periodic catalog pulls with a manual trigger
//  5. Menu read models: cached public menu, always-fresh admin menu
//  6. HTTP Server: REST API under /api/v1 plus health and Prometheus metrics
//
// All long-running services run under a suture supervisor tree and are
// restarted with backoff on failure.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (CATALOG_URL, SYNC_INTERVAL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Minimum useful configuration:
//
//	export CATALOG_URL=https://pos.example.com
//	export CATALOG_TOKEN=your-pos-api-token
//	./menucast
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the sync scheduler and closes the database
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablewise/menucast/internal/api"
	"github.com/tablewise/menucast/internal/catalog"
	"github.com/tablewise/menucast/internal/config"
	"github.com/tablewise/menucast/internal/database"
	"github.com/tablewise/menucast/internal/logging"
	"github.com/tablewise/menucast/internal/menu"
	"github.com/tablewise/menucast/internal/overlay"
	"github.com/tablewise/menucast/internal/supervisor"
	"github.com/tablewise/menucast/internal/sync"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("catalog_url", cfg.Catalog.URL).
		Str("db_path", cfg.Database.Path).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Dur("sync_interval", cfg.Sync.Interval).
		Msg("Starting Menucast")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Catalog client with a circuit breaker so a flapping POS API cannot
	// stall the scheduler or pile up requests.
	source := catalog.NewCircuitBreakerClient(&cfg.Catalog)
	if err := source.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to reach catalog source (will retry on sync)")
	} else {
		logging.Info().Msg("Connected to catalog source")
	}

	// Sync pipeline: status tracker, engine, scheduler.
	statusTracker := sync.NewStatusTracker(db)
	engine := sync.NewEngine(db, source, statusTracker)
	syncManager := sync.NewManager(engine, &cfg.Sync)

	// Read models and admin stores.
	builder := menu.NewBuilder(db)
	menuService := menu.NewService(builder, statusTracker)
	itemStore := menu.NewItemStore(db)
	overlayStore := overlay.NewStore(db)

	// HTTP surface.
	handlers := api.NewHandlers(db, menuService, itemStore, overlayStore, syncManager, statusTracker, &cfg.Cache)
	chiMW := api.NewChiMiddlewareFromSecurity(&cfg.Security)
	mux := api.NewRouter(handlers, chiMW).SetupChi()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSyncService(syncManager)
	logging.Info().Msg("Sync scheduler added to supervisor tree")

	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
