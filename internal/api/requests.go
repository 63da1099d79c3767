// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package api

import (
	"time"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/analysis"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/quality"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/session"
)

// ImagePayload is one image in an AddImages request.
type ImagePayload struct {
	ID        string         `json:"id" validate:"required,max=256"`
	Signals   SignalsPayload `json:"signals" validate:"required"`
	Embedding []float64      `json:"embedding" validate:"required,min=2"`
}

// SignalsPayload carries the raw measurement signals for one image.
// Ranges mirror the scorer's validation so obviously broken payloads
// fail fast with field-level messages.
type SignalsPayload struct {
	BlurScore  float64 `json:"blur_score" validate:"gte=0"`
	Brightness float64 `json:"brightness" validate:"gte=0,lte=255"`
	Contrast   float64 `json:"contrast" validate:"gte=0"`
	Width      int     `json:"width" validate:"gt=0"`
	Height     int     `json:"height" validate:"gt=0"`
	FileSize   int64   `json:"file_size" validate:"gte=0"`
	Format     string  `json:"format" validate:"omitempty,oneof=jpeg png webp avif gif"`
}

// AddImagesRequest registers images into a session.
type AddImagesRequest struct {
	Images []ImagePayload `json:"images" validate:"required,min=1,max=12,dive"`
}

// AnalyzeRequest runs the pipeline over a session's images.
type AnalyzeRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`

	// DuplicateThreshold optionally overrides the configured duplicate
	// cutoff for this run only.
	DuplicateThreshold float64 `json:"duplicate_threshold" validate:"omitempty,gt=0,lte=1"`
}

// SessionPayload is the session representation returned to clients.
type SessionPayload struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	ImageCount int       `json:"image_count"`
	ImageIDs   []string  `json:"image_ids"`
}

// HealthPayload is the health endpoint response.
type HealthPayload struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	ActiveSessions int     `json:"active_sessions"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
}

func sessionPayload(s session.Session) SessionPayload {
	ids := make([]string, len(s.Images))
	for i, img := range s.Images {
		ids[i] = img.ID
	}
	return SessionPayload{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
		ExpiresAt:  s.ExpiresAt,
		ImageCount: len(s.Images),
		ImageIDs:   ids,
	}
}

func (p ImagePayload) descriptor() analysis.ImageDescriptor {
	return analysis.ImageDescriptor{
		ID: p.ID,
		Signals: quality.RawSignals{
			BlurScore:  p.Signals.BlurScore,
			Brightness: p.Signals.Brightness,
			Contrast:   p.Signals.Contrast,
			Width:      p.Signals.Width,
			Height:     p.Signals.Height,
			FileSize:   p.Signals.FileSize,
			Format:     p.Signals.Format,
		},
		Embedding: p.Embedding,
	}
}
