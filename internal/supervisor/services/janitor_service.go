// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package services

import (
	"context"
	"time"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
)

// JanitorService periodically runs a sweep function, typically session
// expiry or cache cleanup. The sweep function returns how many entries
// it removed.
type JanitorService struct {
	name     string
	interval time.Duration
	sweep    func() int
}

// NewJanitorService creates a supervised periodic sweeper.
func NewJanitorService(name string, interval time.Duration, sweep func() int) *JanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JanitorService{
		name:     name,
		interval: interval,
		sweep:    sweep,
	}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := j.sweep()
			if removed > 0 {
				logging.Debug().
					Str("janitor", j.name).
					Int("removed", removed).
					Msg("Sweep complete")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (j *JanitorService) String() string {
	return j.name
}
