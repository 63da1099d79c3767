// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package carousel

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/similarity"
)

// ErrBatchSize indicates the batch is outside the supported size range.
var ErrBatchSize = errors.New("batch size out of range")

// Image is one ordering candidate.
type Image struct {
	// ID is the opaque image identifier.
	ID string

	// Quality is the 0-100 composite quality score.
	Quality float64

	// Width and Height break quality ties: larger pixel counts win.
	Width  int
	Height int
}

// Entry is one position in the final ordering.
type Entry struct {
	ImageID  string  `json:"image_id"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
	IsHero   bool    `json:"is_hero"`
	Reason   string  `json:"reason"`
}

// Result is the complete ordering: a permutation of the input with
// positions 1..N and exactly one hero at position 1.
type Result struct {
	Entries []Entry `json:"entries"`
	HeroID  string  `json:"hero_id"`
}

// Config holds the ordering parameters.
type Config struct {
	// MinBatchSize and MaxBatchSize bound the accepted batch size.
	// Below two images ordering is meaningless; above twelve the
	// pairwise comparison cost grows quadratically.
	MinBatchSize int `json:"min_batch_size" koanf:"min_batch_size"`
	MaxBatchSize int `json:"max_batch_size" koanf:"max_batch_size"`

	// DiversityPenalty scales the score reduction for candidates
	// similar to the image just placed. Penalty = DiversityPenalty *
	// similarity, in composite-score points.
	DiversityPenalty float64 `json:"diversity_penalty" koanf:"diversity_penalty"`

	// DemotionPenalty is subtracted from non-best duplicate-group
	// members. It must exceed the maximum composite score so demoted
	// images sort below every non-demoted candidate.
	DemotionPenalty float64 `json:"demotion_penalty" koanf:"demotion_penalty"`
}

// DefaultConfig returns the default ordering parameters.
func DefaultConfig() Config {
	return Config{
		MinBatchSize:     2,
		MaxBatchSize:     12,
		DiversityPenalty: 30,
		DemotionPenalty:  200,
	}
}

// Validate checks the ordering parameters.
func (c Config) Validate() error {
	if c.MinBatchSize < 2 {
		return fmt.Errorf("min batch size must be at least 2, got %d", c.MinBatchSize)
	}
	if c.MaxBatchSize < c.MinBatchSize {
		return fmt.Errorf("max batch size %d below min %d", c.MaxBatchSize, c.MinBatchSize)
	}
	if c.DiversityPenalty < 0 {
		return fmt.Errorf("diversity penalty must be non-negative, got %v", c.DiversityPenalty)
	}
	if c.DemotionPenalty <= 100 {
		return fmt.Errorf("demotion penalty must exceed the composite score range, got %v", c.DemotionPenalty)
	}
	return nil
}

// Engine produces carousel orderings. Stateless and safe for concurrent
// use.
type Engine struct {
	cfg Config
}

// NewEngine creates an ordering engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// CheckBatchSize reports whether a batch of n images is within the
// supported range. Callers can reject a batch before doing any per-image
// work.
func (e *Engine) CheckBatchSize(n int) error {
	if n < e.cfg.MinBatchSize || n > e.cfg.MaxBatchSize {
		return fmt.Errorf("%w: got %d images, supported range [%d, %d]",
			ErrBatchSize, n, e.cfg.MinBatchSize, e.cfg.MaxBatchSize)
	}
	return nil
}

// Order produces the final ordering for a batch. The input slice is not
// mutated; the result is deterministic for a fixed input set regardless
// of its iteration order.
func (e *Engine) Order(images []Image, analysis *similarity.Analysis) (*Result, error) {
	if err := e.CheckBatchSize(len(images)); err != nil {
		return nil, err
	}

	// Work on a sorted copy so input iteration order cannot leak into
	// the result. The sort key is the hero preference order.
	candidates := make([]Image, len(images))
	copy(candidates, images)
	sort.Slice(candidates, func(i, j int) bool {
		return heroLess(candidates[i], candidates[j])
	})

	demoted, bestOf := demotions(candidates, analysis)

	hero := candidates[0]
	result := &Result{
		HeroID:  hero.ID,
		Entries: make([]Entry, 0, len(candidates)),
	}
	result.Entries = append(result.Entries, Entry{
		ImageID:  hero.ID,
		Position: 1,
		Score:    hero.Quality,
		IsHero:   true,
		Reason:   "Highest quality score with optimal composition",
	})

	pool := candidates[1:]
	previous := hero
	for position := 2; len(pool) > 0; position++ {
		best := -1
		var bestEff, bestSim float64

		for i, candidate := range pool {
			eff, sim := e.effectiveScore(candidate, previous, demoted[candidate.ID], analysis)
			if best < 0 || effectiveLess(pool[best], bestEff, candidate, eff) {
				best, bestEff, bestSim = i, eff, sim
			}
		}

		chosen := pool[best]
		result.Entries = append(result.Entries, Entry{
			ImageID:  chosen.ID,
			Position: position,
			Score:    chosen.Quality,
			Reason:   e.reason(chosen, previous, position, bestSim, demoted, bestOf, analysis),
		})

		pool = append(pool[:best], pool[best+1:]...)
		previous = chosen
	}

	return result, nil
}

// effectiveScore computes the penalized selection score for a candidate
// given the image just placed. Returns the score and the similarity
// that produced the diversity penalty (0 when the pair was DISTINCT).
func (e *Engine) effectiveScore(candidate, previous Image, isDemoted bool, analysis *similarity.Analysis) (eff, sim float64) {
	eff = candidate.Quality

	s, class := analysis.Similarity(candidate.ID, previous.ID)
	if class != similarity.ClassDistinct && s > 0 {
		eff -= e.cfg.DiversityPenalty * s
		sim = s
	}

	if isDemoted {
		eff -= e.cfg.DemotionPenalty
	}

	return eff, sim
}

// effectiveLess reports whether challenger (with effective score
// challengerEff) should replace incumbent. Ties break by composite
// quality, then by id, keeping selection total and deterministic.
func effectiveLess(incumbent Image, incumbentEff float64, challenger Image, challengerEff float64) bool {
	if challengerEff != incumbentEff {
		return challengerEff > incumbentEff
	}
	if challenger.Quality != incumbent.Quality {
		return challenger.Quality > incumbent.Quality
	}
	return challenger.ID < incumbent.ID
}

// heroLess is the total hero-preference order: quality descending, then
// pixel count descending, then id ascending.
func heroLess(a, b Image) bool {
	if a.Quality != b.Quality {
		return a.Quality > b.Quality
	}
	pa, pb := a.Width*a.Height, b.Width*b.Height
	if pa != pb {
		return pa > pb
	}
	return a.ID < b.ID
}

// demotions marks every duplicate-group member except the group's best
// representative. Returns the demotion set and, for each demoted id,
// the id of its group's best representative.
func demotions(candidates []Image, analysis *similarity.Analysis) (demoted map[string]bool, bestOf map[string]string) {
	byID := make(map[string]Image, len(candidates))
	for _, img := range candidates {
		byID[img.ID] = img
	}

	demoted = make(map[string]bool)
	bestOf = make(map[string]string)

	for _, group := range analysis.Groups() {
		best := ""
		for _, id := range group {
			if best == "" || heroLess(byID[id], byID[best]) {
				best = id
			}
		}
		for _, id := range group {
			if id != best {
				demoted[id] = true
				bestOf[id] = best
			}
		}
	}

	return demoted, bestOf
}

// reason names the dominant factor behind a placement in plain language.
func (e *Engine) reason(chosen, previous Image, position int, sim float64, demoted map[string]bool, bestOf map[string]string, analysis *similarity.Analysis) string {
	if demoted[chosen.ID] {
		best := bestOf[chosen.ID]
		s, _ := analysis.Similarity(chosen.ID, best)
		return fmt.Sprintf("Near-duplicate of image %s (similarity %.2f); placed later so the best version leads", best, s)
	}
	if sim > 0 {
		return fmt.Sprintf("Similar to preceding image %s (similarity %.2f); chosen as the best remaining balance of quality and variety", previous.ID, sim)
	}
	return fmt.Sprintf("Next highest quality score (%.1f) among remaining images", chosen.Quality)
}
