// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package similarity

import (
	"errors"
	"math"
	"testing"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultConfig())
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}
	return d
}

func TestNewDetectorRejectsBadThresholds(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"related above duplicate", Config{DuplicateThreshold: 0.8, RelatedThreshold: 0.9}},
		{"duplicate above 1", Config{DuplicateThreshold: 1.5, RelatedThreshold: 0.8}},
		{"related below -1", Config{DuplicateThreshold: 0.9, RelatedThreshold: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDetector(tt.cfg); err == nil {
				t.Error("NewDetector() accepted invalid thresholds")
			}
		})
	}
}

func TestCosineBounds(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"scaled copies", []float64{0.5, 0.5}, []float64{2, 2}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b, vectorNorm(tt.a), vectorNorm(tt.b))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("cosine() = %v, want %v", got, tt.want)
			}
			if got < -1 || got > 1 {
				t.Errorf("cosine() = %v, outside [-1, 1]", got)
			}
		})
	}
}

func TestDetectClassification(t *testing.T) {
	d := newTestDetector(t)

	images := []Input{
		{ID: "a", Embedding: []float64{1, 0, 0}},
		{ID: "b", Embedding: []float64{1, 0.01, 0}},  // near-identical to a
		{ID: "c", Embedding: []float64{0.86, 0.6, 0}}, // related to a
		{ID: "d", Embedding: []float64{0, 0, 1}},     // distinct from everything
	}

	analysis, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if sim, class := analysis.Similarity("a", "b"); class != ClassDuplicate {
		t.Errorf("a-b class = %v (sim %v), want DUPLICATE", class, sim)
	}
	if sim, class := analysis.Similarity("a", "c"); class != ClassRelated {
		t.Errorf("a-c class = %v (sim %v), want RELATED", class, sim)
	}
	if _, class := analysis.Similarity("a", "d"); class != ClassDistinct {
		t.Errorf("a-d class = %v, want DISTINCT (discarded)", class)
	}

	// Lookup is symmetric.
	simAB, _ := analysis.Similarity("a", "b")
	simBA, _ := analysis.Similarity("b", "a")
	if simAB != simBA {
		t.Errorf("asymmetric lookup: %v vs %v", simAB, simBA)
	}

	stats := analysis.Stats()
	if stats.PairsCompared != 6 {
		t.Errorf("PairsCompared = %d, want 6", stats.PairsCompared)
	}
	if stats.DuplicatePairs != 1 {
		t.Errorf("DuplicatePairs = %d, want 1", stats.DuplicatePairs)
	}
}

func TestDetectIdenticalEmbeddingsAreDuplicates(t *testing.T) {
	d := newTestDetector(t)

	images := []Input{
		{ID: "a", Embedding: []float64{0.3, 0.4, 0.5}},
		{ID: "b", Embedding: []float64{0.3, 0.4, 0.5}},
	}

	analysis, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	sim, class := analysis.Similarity("a", "b")
	if class != ClassDuplicate {
		t.Errorf("class = %v, want DUPLICATE", class)
	}
	if math.Abs(sim-1.0) > 1e-6 {
		t.Errorf("similarity = %v, want 1.0", sim)
	}
}

func TestDetectAllIdenticalCollapsesToOneGroup(t *testing.T) {
	d := newTestDetector(t)

	v := []float64{1, 1, 1}
	images := []Input{
		{ID: "a", Embedding: v},
		{ID: "b", Embedding: v},
		{ID: "c", Embedding: v},
		{ID: "d", Embedding: v},
	}

	analysis, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	groups := analysis.Groups()
	if len(groups) != 1 {
		t.Fatalf("len(Groups()) = %d, want 1", len(groups))
	}
	if len(groups[0]) != 4 {
		t.Errorf("group size = %d, want 4", len(groups[0]))
	}
}

func TestDetectTransitiveGrouping(t *testing.T) {
	d := newTestDetector(t)

	// a-b and b-c are duplicates; a-c alone falls below the threshold.
	// Embeddings chosen so cos(a,b) ~ 0.97, cos(b,c) ~ 0.97, cos(a,c) ~ 0.88.
	images := []Input{
		{ID: "a", Embedding: []float64{1, 0}},
		{ID: "b", Embedding: []float64{1, 0.25}},
		{ID: "c", Embedding: []float64{1, 0.5}},
	}

	analysis, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if _, class := analysis.Similarity("a", "b"); class != ClassDuplicate {
		t.Fatalf("a-b class = %v, want DUPLICATE", class)
	}
	if _, class := analysis.Similarity("b", "c"); class != ClassDuplicate {
		t.Fatalf("b-c class = %v, want DUPLICATE", class)
	}
	if _, class := analysis.Similarity("a", "c"); class == ClassDuplicate {
		t.Fatalf("a-c classified DUPLICATE; test relies on it being below threshold")
	}

	groups := analysis.Groups()
	if len(groups) != 1 {
		t.Fatalf("len(Groups()) = %d, want 1 transitive group", len(groups))
	}
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if groups[0][i] != id {
			t.Errorf("group = %v, want %v", groups[0], want)
			break
		}
	}
}

func TestDetectZeroNormEmbedding(t *testing.T) {
	d := newTestDetector(t)

	images := []Input{
		{ID: "a", Embedding: []float64{0, 0, 0}},
		{ID: "b", Embedding: []float64{1, 2, 3}},
	}

	analysis, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v, want degenerate input handled without error", err)
	}

	sim, class := analysis.Similarity("a", "b")
	if sim != 0 || class != ClassDistinct {
		t.Errorf("zero-norm pair = (%v, %v), want (0, DISTINCT)", sim, class)
	}
}

func TestDetectDimensionMismatch(t *testing.T) {
	d := newTestDetector(t)

	images := []Input{
		{ID: "a", Embedding: []float64{1, 2, 3}},
		{ID: "b", Embedding: []float64{1, 2}},
	}

	_, err := d.Detect(images)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Detect() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestDetectDeterministicAcrossInputOrder(t *testing.T) {
	d := newTestDetector(t)

	images := []Input{
		{ID: "a", Embedding: []float64{1, 0}},
		{ID: "b", Embedding: []float64{1, 0.05}},
		{ID: "c", Embedding: []float64{0, 1}},
		{ID: "d", Embedding: []float64{1, 0.02}},
	}
	reversed := make([]Input, len(images))
	for i, img := range images {
		reversed[len(images)-1-i] = img
	}

	first, err := d.Detect(images)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	second, err := d.Detect(reversed)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	a, b := first.Pairs(), second.Pairs()
	if len(a) != len(b) {
		t.Fatalf("pair counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("pair %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
