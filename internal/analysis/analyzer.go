// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/carousel"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/metrics"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/quality"
	"github.com/SantiagoMaresca/carousel-optimizer/internal/similarity"
)

// ErrDuplicateImageID indicates the batch lists the same image id twice.
var ErrDuplicateImageID = errors.New("duplicate image id in batch")

// ErrEmptyImageID indicates an image with no id.
var ErrEmptyImageID = errors.New("empty image id")

// ErrInvalidThreshold indicates a per-request duplicate threshold
// override that the similarity configuration cannot accept.
var ErrInvalidThreshold = errors.New("invalid duplicate threshold override")

// ImageDescriptor is one image submitted for analysis: its id, the raw
// measurement signals for quality scoring, and its embedding vector for
// similarity detection.
type ImageDescriptor struct {
	ID        string
	Signals   quality.RawSignals
	Embedding []float64
}

// Options tunes a single analysis run.
type Options struct {
	// DuplicateThreshold overrides the configured duplicate cutoff when
	// positive. Must stay above the related threshold.
	DuplicateThreshold float64
}

// ImageResult pairs an image id with its quality report.
type ImageResult struct {
	ID      string         `json:"id"`
	Quality quality.Report `json:"quality"`
}

// Result is the complete outcome of one batch analysis.
type Result struct {
	BatchID         string            `json:"batch_id"`
	ImageCount      int               `json:"image_count"`
	Duration        time.Duration     `json:"-"`
	DurationMillis  float64           `json:"duration_ms"`
	Images          []ImageResult     `json:"images"`
	Pairs           []similarity.Pair `json:"similar_pairs"`
	DuplicateGroups [][]string        `json:"duplicate_groups"`
	SimilarityStats similarity.Stats  `json:"similarity_stats"`
	Ordering        []carousel.Entry  `json:"ordering"`
	HeroID          string            `json:"hero_id"`
}

// Config holds the orchestrator parameters together with the
// sub-component configurations it constructs from.
type Config struct {
	// Workers bounds concurrent quality scoring. Zero means GOMAXPROCS.
	Workers int `json:"workers" koanf:"workers"`

	Quality    quality.Config    `json:"quality" koanf:"quality"`
	Similarity similarity.Config `json:"similarity" koanf:"similarity"`
	Carousel   carousel.Config   `json:"carousel" koanf:"carousel"`
}

// DefaultConfig returns the production defaults for all stages.
func DefaultConfig() Config {
	return Config{
		Workers:    0,
		Quality:    quality.DefaultConfig(),
		Similarity: similarity.DefaultConfig(),
		Carousel:   carousel.DefaultConfig(),
	}
}

// Analyzer runs the full pipeline over a batch of images.
type Analyzer struct {
	scorer  *quality.Scorer
	simCfg  similarity.Config
	engine  *carousel.Engine
	workers int
}

// New builds an Analyzer, validating every stage configuration.
func New(cfg Config) (*Analyzer, error) {
	scorer, err := quality.NewScorer(cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("quality config: %w", err)
	}
	if err := cfg.Similarity.Validate(); err != nil {
		return nil, fmt.Errorf("similarity config: %w", err)
	}
	engine, err := carousel.NewEngine(cfg.Carousel)
	if err != nil {
		return nil, fmt.Errorf("carousel config: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Analyzer{
		scorer:  scorer,
		simCfg:  cfg.Similarity,
		engine:  engine,
		workers: workers,
	}, nil
}

// Analyze scores, compares, and orders the batch. The result is
// deterministic for a given batch regardless of input order or worker
// scheduling; errors surface in input order.
func (a *Analyzer) Analyze(ctx context.Context, images []ImageDescriptor, opts Options) (*Result, error) {
	start := time.Now()

	if err := a.engine.CheckBatchSize(len(images)); err != nil {
		return nil, err
	}
	if err := validateBatch(images); err != nil {
		return nil, err
	}

	reports, err := a.scoreAll(ctx, images)
	if err != nil {
		return nil, err
	}

	detector, err := a.detector(opts)
	if err != nil {
		return nil, err
	}

	simInputs := make([]similarity.Input, len(images))
	for i, img := range images {
		simInputs[i] = similarity.Input{ID: img.ID, Embedding: img.Embedding}
	}
	simResult, err := detector.Detect(simInputs)
	if err != nil {
		return nil, fmt.Errorf("similarity detection: %w", err)
	}

	candidates := make([]carousel.Image, len(images))
	for i, img := range images {
		candidates[i] = carousel.Image{
			ID:      img.ID,
			Quality: reports[i].Composite,
			Width:   img.Signals.Width,
			Height:  img.Signals.Height,
		}
	}
	ordering, err := a.engine.Order(candidates, simResult)
	if err != nil {
		return nil, fmt.Errorf("ordering: %w", err)
	}

	result := a.assemble(images, reports, simResult, ordering)
	result.Duration = time.Since(start)
	result.DurationMillis = float64(result.Duration.Microseconds()) / 1000

	stats := simResult.Stats()
	metrics.RecordAnalysis(len(images), stats.DuplicatePairs, result.Duration)

	logging.Info().
		Str("batch_id", result.BatchID).
		Int("images", result.ImageCount).
		Int("duplicate_pairs", stats.DuplicatePairs).
		Str("hero_id", result.HeroID).
		Dur("duration", result.Duration).
		Msg("Batch analysis complete")

	return result, nil
}

// scoreAll fans quality scoring out over a bounded worker pool. Reports
// come back indexed by input position; when several images fail, the
// error for the earliest input position wins.
func (a *Analyzer) scoreAll(ctx context.Context, images []ImageDescriptor) ([]quality.Report, error) {
	reports := make([]quality.Report, len(images))
	errs := make([]error, len(images))

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i := range images {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := a.scorer.Score(images[idx].Signals)
			if err != nil {
				errs[idx] = fmt.Errorf("score image %s: %w", images[idx].ID, err)
				return
			}
			reports[idx] = report
		}(i)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// detector builds the similarity detector, applying any per-request
// threshold override.
func (a *Analyzer) detector(opts Options) (*similarity.Detector, error) {
	cfg := a.simCfg
	if opts.DuplicateThreshold > 0 {
		cfg.DuplicateThreshold = opts.DuplicateThreshold
	}
	detector, err := similarity.NewDetector(cfg)
	if err != nil {
		// The base configuration was validated at construction, so a
		// failure here can only come from the override.
		if opts.DuplicateThreshold > 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, err)
		}
		return nil, fmt.Errorf("similarity config: %w", err)
	}
	return detector, nil
}

func (a *Analyzer) assemble(images []ImageDescriptor, reports []quality.Report, sim *similarity.Analysis, ordering *carousel.Result) *Result {
	imageResults := make([]ImageResult, len(images))
	for i, img := range images {
		imageResults[i] = ImageResult{ID: img.ID, Quality: reports[i]}
	}

	return &Result{
		BatchID:         uuid.New().String(),
		ImageCount:      len(images),
		Images:          imageResults,
		Pairs:           sim.Pairs(),
		DuplicateGroups: sim.Groups(),
		SimilarityStats: sim.Stats(),
		Ordering:        ordering.Entries,
		HeroID:          ordering.HeroID,
	}
}

func validateBatch(images []ImageDescriptor) error {
	seen := make(map[string]struct{}, len(images))
	for _, img := range images {
		if img.ID == "" {
			return ErrEmptyImageID
		}
		if _, dup := seen[img.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateImageID, img.ID)
		}
		seen[img.ID] = struct{}{}
	}
	return nil
}
