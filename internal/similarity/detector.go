// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/SantiagoMaresca/carousel-optimizer/internal/logging"
)

// ErrDimensionMismatch indicates embeddings in a batch do not share the
// same dimensionality. Fatal for the whole batch.
var ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")

// Class is the similarity classification of an image pair.
type Class string

const (
	// ClassDuplicate marks pairs at or above the duplicate threshold.
	ClassDuplicate Class = "DUPLICATE"
	// ClassRelated marks pairs at or above the related threshold.
	ClassRelated Class = "RELATED"
	// ClassDistinct marks pairs below the related threshold. Distinct
	// pairs are not retained in the analysis.
	ClassDistinct Class = "DISTINCT"
)

// Input is one image's id and embedding vector.
type Input struct {
	ID        string
	Embedding []float64
}

// Pair is a retained similarity pair. IDs are ordered A < B so each
// unordered pair appears exactly once.
type Pair struct {
	A          string  `json:"image_a"`
	B          string  `json:"image_b"`
	Similarity float64 `json:"similarity"`
	Class      Class   `json:"class"`
}

// Stats summarizes the retained pairs of a batch.
type Stats struct {
	PairsCompared  int     `json:"pairs_compared"`
	PairsRetained  int     `json:"pairs_retained"`
	DuplicatePairs int     `json:"duplicate_pairs"`
	RelatedPairs   int     `json:"related_pairs"`
	MeanSimilarity float64 `json:"mean_similarity"`
	MaxSimilarity  float64 `json:"max_similarity"`
	MinSimilarity  float64 `json:"min_similarity"`
}

// Config holds the classification thresholds.
type Config struct {
	// DuplicateThreshold is the cosine similarity at or above which a
	// pair is classified DUPLICATE.
	DuplicateThreshold float64 `json:"duplicate_threshold" koanf:"duplicate_threshold"`

	// RelatedThreshold is the cosine similarity at or above which a
	// pair is classified RELATED.
	RelatedThreshold float64 `json:"related_threshold" koanf:"related_threshold"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold: 0.92,
		RelatedThreshold:   0.80,
	}
}

// Validate checks threshold ordering and ranges.
func (c Config) Validate() error {
	if c.RelatedThreshold < -1 || c.RelatedThreshold > 1 ||
		c.DuplicateThreshold < -1 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("similarity thresholds must lie in [-1, 1]: related=%v duplicate=%v",
			c.RelatedThreshold, c.DuplicateThreshold)
	}
	if c.RelatedThreshold > c.DuplicateThreshold {
		return fmt.Errorf("related threshold %v exceeds duplicate threshold %v",
			c.RelatedThreshold, c.DuplicateThreshold)
	}
	return nil
}

// Detector compares embedding vectors pairwise. Stateless and safe for
// concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// Analysis is the similarity result for one batch. It retains every
// DUPLICATE and RELATED pair, the duplicate groups, and a similarity
// lookup used by the ordering engine.
type Analysis struct {
	pairs  []Pair
	lookup map[[2]string]Pair
	groups [][]string
	stats  Stats
}

// Detect compares every unordered pair of images. The pair set is
// deterministic for a fixed input set regardless of input order: pairs
// are keyed by sorted ids and the retained list is sorted by (A, B).
func (d *Detector) Detect(images []Input) (*Analysis, error) {
	if err := checkDimensions(images); err != nil {
		return nil, err
	}

	norms := make([]float64, len(images))
	for i, img := range images {
		norms[i] = vectorNorm(img.Embedding)
		if norms[i] == 0 {
			logging.Warn().
				Str("image_id", img.ID).
				Msg("Zero-norm embedding; similarities involving this image coerced to 0")
		}
	}

	analysis := &Analysis{
		lookup: make(map[[2]string]Pair),
		stats:  Stats{MinSimilarity: math.Inf(1), MaxSimilarity: math.Inf(-1)},
	}

	var sum float64
	for i := 0; i < len(images); i++ {
		for j := i + 1; j < len(images); j++ {
			analysis.stats.PairsCompared++

			sim := cosine(images[i].Embedding, images[j].Embedding, norms[i], norms[j])
			class := d.classify(sim)
			if class == ClassDistinct {
				continue
			}

			a, b := images[i].ID, images[j].ID
			if a > b {
				a, b = b, a
			}
			pair := Pair{A: a, B: b, Similarity: sim, Class: class}
			analysis.pairs = append(analysis.pairs, pair)
			analysis.lookup[[2]string{a, b}] = pair

			sum += sim
			if sim > analysis.stats.MaxSimilarity {
				analysis.stats.MaxSimilarity = sim
			}
			if sim < analysis.stats.MinSimilarity {
				analysis.stats.MinSimilarity = sim
			}
			if class == ClassDuplicate {
				analysis.stats.DuplicatePairs++
			} else {
				analysis.stats.RelatedPairs++
			}
		}
	}

	analysis.stats.PairsRetained = len(analysis.pairs)
	if analysis.stats.PairsRetained > 0 {
		analysis.stats.MeanSimilarity = sum / float64(analysis.stats.PairsRetained)
	} else {
		analysis.stats.MinSimilarity = 0
		analysis.stats.MaxSimilarity = 0
	}

	sort.Slice(analysis.pairs, func(i, j int) bool {
		if analysis.pairs[i].A != analysis.pairs[j].A {
			return analysis.pairs[i].A < analysis.pairs[j].A
		}
		return analysis.pairs[i].B < analysis.pairs[j].B
	})

	analysis.groups = duplicateGroups(images, analysis.pairs)

	return analysis, nil
}

// classify maps a similarity value to its class.
func (d *Detector) classify(sim float64) Class {
	switch {
	case sim >= d.cfg.DuplicateThreshold:
		return ClassDuplicate
	case sim >= d.cfg.RelatedThreshold:
		return ClassRelated
	default:
		return ClassDistinct
	}
}

// Pairs returns all retained pairs sorted by (A, B).
func (a *Analysis) Pairs() []Pair {
	return a.pairs
}

// DuplicatePairs returns only the DUPLICATE-classified pairs, in (A, B)
// order.
func (a *Analysis) DuplicatePairs() []Pair {
	out := make([]Pair, 0, a.stats.DuplicatePairs)
	for _, p := range a.pairs {
		if p.Class == ClassDuplicate {
			out = append(out, p)
		}
	}
	return out
}

// Groups returns the duplicate groups (connected components over
// DUPLICATE edges) of size two or more. Groups are sorted by their
// smallest member id; members are sorted by id.
func (a *Analysis) Groups() [][]string {
	return a.groups
}

// Similarity returns the retained similarity and class between two
// images. Pairs classified DISTINCT were discarded and report 0.
func (a *Analysis) Similarity(idA, idB string) (float64, Class) {
	if idA > idB {
		idA, idB = idB, idA
	}
	if pair, ok := a.lookup[[2]string{idA, idB}]; ok {
		return pair.Similarity, pair.Class
	}
	return 0, ClassDistinct
}

// Stats returns the batch similarity statistics.
func (a *Analysis) Stats() Stats {
	return a.stats
}

// checkDimensions verifies all embeddings share one dimensionality.
func checkDimensions(images []Input) error {
	if len(images) == 0 {
		return nil
	}
	dim := len(images[0].Embedding)
	for _, img := range images[1:] {
		if len(img.Embedding) != dim {
			return fmt.Errorf("%w: image %q has %d dimensions, batch has %d",
				ErrDimensionMismatch, img.ID, len(img.Embedding), dim)
		}
	}
	return nil
}

// cosine computes the cosine similarity of two vectors given their
// precomputed norms, clamped to [-1, 1] against floating-point drift.
// Zero-norm vectors yield 0.
func cosine(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	sim := dot / (normA * normB)
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
