// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package main is the entry point for the Carousel Optimizer server.
//
// Carousel Optimizer ranks batches of product images by perceptual
// quality, detects near-duplicate shots, and produces an ordered
// carousel with a hero image at position 1. Clients build an image
// session, attach precomputed quality signals and embeddings, and
// request an analysis over the HTTP API.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file, environment (Koanf v2)
//  2. Logging: global zerolog logger configured from settings
//  3. Core: analyzer, session manager, and result cache
//  4. HTTP Server: REST API under /api/v1 plus /metrics
//  5. Supervisor tree: HTTP service and maintenance janitors (suture)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (CAROUSEL_ prefix, e.g. CAROUSEL_SERVER_PORT)
//   - Config file (carousel.yaml, or CAROUSEL_CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Stops the maintenance janitors
//
// # Example Usage
//
//	export CAROUSEL_SERVER_PORT=8080
//	export CAROUSEL_LOG_LEVEL=debug
//	export CAROUSEL_DUPLICATE_THRESHOLD=0.95
//	./carousel-optimizer
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/api"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/cache"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/config"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/session"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/supervisor"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/supervisor/services"
)

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Dur("session_ttl", cfg.Session.TTL).
		Int("max_images", cfg.Session.MaxImages).
		Float64("duplicate_threshold", cfg.Analysis.Similarity.DuplicateThreshold).
		Msg("Starting Carousel Optimizer")

	analyzer, err := analysis.New(cfg.Analysis)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build analyzer")
	}

	sessions, err := session.NewManager(cfg.Session)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build session manager")
	}

	resultCache := cache.New(cfg.Cache.TTL)

	handler := api.NewHandler(analyzer, sessions, resultCache, version)
	router := api.NewRouter(handler, cfg.API)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Supervisor events flow through the zerolog-backed slog adapter.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewJanitorService(
		"session-janitor", sessions.SweepInterval(), sessions.Sweep))
	tree.AddMaintenanceService(services.NewJanitorService(
		"cache-janitor", cfg.Cache.SweepInterval, resultCache.Cleanup))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}

	logging.Info().Msg("Application stopped gracefully")
}
