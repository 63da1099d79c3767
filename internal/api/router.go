// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/middleware"
)

// RouterConfig holds the HTTP-surface parameters.
type RouterConfig struct {
	CORSAllowedOrigins []string      `json:"cors_allowed_origins" koanf:"cors_allowed_origins"`
	RateLimitRequests  int           `json:"rate_limit_requests" koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `json:"rate_limit_disabled" koanf:"rate_limit_disabled"`
}

// DefaultRouterConfig returns conservative defaults. CORS origins are
// empty on purpose; deployments must opt in explicitly.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSAllowedOrigins: nil,
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
	}
}

// NewRouter assembles the full route tree with the middleware stack.
func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Get("/health", handler.Health)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", handler.CreateSession)
			r.Get("/{sessionID}", handler.GetSession)
			r.Delete("/{sessionID}", handler.DeleteSession)
			r.Post("/{sessionID}/images", handler.AddImages)
		})

		r.Post("/analyze", handler.Analyze)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(handler.NotFound)

	return r
}
