// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/cache"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/carousel"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/metrics"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/quality"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/session"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/similarity"
)

// Handler holds the dependencies of every endpoint.
type Handler struct {
	analyzer  *analysis.Analyzer
	sessions  *session.Manager
	cache     *cache.Cache
	version   string
	startTime time.Time
}

// NewHandler wires the API handlers.
func NewHandler(analyzer *analysis.Analyzer, sessions *session.Manager, resultCache *cache.Cache, version string) *Handler {
	return &Handler{
		analyzer:  analyzer,
		sessions:  sessions,
		cache:     resultCache,
		version:   version,
		startTime: time.Now(),
	}
}

// CreateSession handles POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	respondOK(w, http.StatusCreated, sessionPayload(s), Metadata{})
}

// GetSession handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s, err := h.sessions.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "Session not found", nil)
		return
	}
	respondOK(w, http.StatusOK, sessionPayload(s), Metadata{})
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if err := h.sessions.Delete(id); err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "Session not found", nil)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"deleted": id}, Metadata{})
}

// AddImages handles POST /api/v1/sessions/{sessionID}/images.
func (h *Handler) AddImages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	var req AddImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidJSON, "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	images := make([]analysis.ImageDescriptor, len(req.Images))
	for i, payload := range req.Images {
		images[i] = payload.descriptor()
	}

	s, err := h.sessions.AddImages(id, images)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			respondError(w, http.StatusNotFound, CodeNotFound, "Session not found", nil)
		case errors.Is(err, session.ErrImageLimit):
			respondError(w, http.StatusUnprocessableEntity, CodeImageLimit, err.Error(), nil)
		case errors.Is(err, session.ErrDuplicateImage):
			respondError(w, http.StatusConflict, CodeDuplicateImage, err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, CodeInternal, "Failed to register images", err)
		}
		return
	}

	respondOK(w, http.StatusOK, sessionPayload(s), Metadata{})
}

// analyzeCacheParams feeds the cache key. Any change to the image set or
// the threshold produces a different key.
type analyzeCacheParams struct {
	SessionID string
	ImageIDs  []string
	Threshold float64
}

// Analyze handles POST /api/v1/analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidJSON, "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	s, err := h.sessions.Get(req.SessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "Session not found", nil)
		return
	}

	imageIDs := make([]string, len(s.Images))
	for i, img := range s.Images {
		imageIDs[i] = img.ID
	}
	key := cache.GenerateKey("analyze", analyzeCacheParams{
		SessionID: s.ID,
		ImageIDs:  imageIDs,
		Threshold: req.DuplicateThreshold,
	})

	if cached, ok := h.cache.Get(key); ok {
		result := cached.(*analysis.Result)
		respondOK(w, http.StatusOK, result, Metadata{Cached: true})
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), s.Images, analysis.Options{
		DuplicateThreshold: req.DuplicateThreshold,
	})
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}

	h.cache.Set(key, result)
	respondOK(w, http.StatusOK, result, Metadata{
		AnalysisTimeMS: result.Duration.Milliseconds(),
	})
}

// respondAnalysisError maps pipeline failures onto API codes.
func (h *Handler) respondAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, carousel.ErrBatchSize):
		metrics.RecordAnalysisError("invalid_input")
		respondError(w, http.StatusUnprocessableEntity, CodeInvalidBatchSize, err.Error(), nil)
	case errors.Is(err, analysis.ErrEmptyImageID), errors.Is(err, analysis.ErrDuplicateImageID),
		errors.Is(err, analysis.ErrInvalidThreshold):
		metrics.RecordAnalysisError("invalid_input")
		respondError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error(), nil)
	case errors.Is(err, quality.ErrInvalidSignals):
		metrics.RecordAnalysisError("quality")
		respondError(w, http.StatusUnprocessableEntity, CodeInvalidSignals, err.Error(), nil)
	case errors.Is(err, similarity.ErrDimensionMismatch):
		metrics.RecordAnalysisError("similarity")
		respondError(w, http.StatusUnprocessableEntity, CodeDimensionError, err.Error(), nil)
	default:
		metrics.RecordAnalysisError("internal")
		logging.Err(err).Msg("Analysis failed")
		respondError(w, http.StatusInternalServerError, CodeInternal, "Analysis failed", err)
	}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	payload := HealthPayload{
		Status:         "ok",
		Version:        h.version,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
		ActiveSessions: h.sessions.Count(),
		CacheHitRate:   h.cache.HitRate(),
	}
	respondOK(w, http.StatusOK, payload, Metadata{})
}

// NotFound is the catch-all for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	logging.Debug().Str("path", sanitizeLogValue(r.URL.Path)).Msg("Route not found")
	respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
}
