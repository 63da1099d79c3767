// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package quality

import (
	"errors"
	"math"
	"testing"
)

// goodSignals returns signals that earn full marks on every sub-score.
func goodSignals() RawSignals {
	return RawSignals{
		BlurScore:  800,
		Brightness: 128,
		Contrast:   60,
		Width:      1920,
		Height:     1080,
		FileSize:   2 << 20,
		Format:     "JPEG",
	}
}

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	return s
}

func TestNewScorerRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Sharpness = 0.9 // sum now 1.5

	if _, err := NewScorer(cfg); err == nil {
		t.Fatal("NewScorer() accepted weights that do not sum to 1.0")
	}
}

func TestScorePerfectImage(t *testing.T) {
	s := newTestScorer(t)

	report, err := s.Score(goodSignals())
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if report.Composite != 100 {
		t.Errorf("Composite = %v, want 100", report.Composite)
	}
	if report.Grade != GradeExceptional {
		t.Errorf("Grade = %v, want %v", report.Grade, GradeExceptional)
	}
	if len(report.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want empty", report.Suggestions)
	}
	if len(report.Flags) != 0 {
		t.Errorf("Flags = %v, want empty", report.Flags)
	}
}

func TestScoreCompositeBounds(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name    string
		signals RawSignals
	}{
		{"worst case", RawSignals{BlurScore: 0, Brightness: 0, Contrast: 0, Width: 1, Height: 1}},
		{"overbright", RawSignals{BlurScore: 100, Brightness: 255, Contrast: 10, Width: 640, Height: 480}},
		{"oversaturated signals", RawSignals{BlurScore: 1e9, Brightness: 125, Contrast: 1e6, Width: 8000, Height: 8000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Score(tt.signals)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if report.Composite < 0 || report.Composite > 100 {
				t.Errorf("Composite = %v, outside [0, 100]", report.Composite)
			}
		})
	}
}

func TestGradeBoundaries(t *testing.T) {
	tests := []struct {
		composite float64
		want      Grade
	}{
		{100, GradeExceptional},
		{90.0, GradeExceptional},
		{89.999, GradeProfessional},
		{75.0, GradeProfessional},
		{74.999, GradeGood},
		{60.0, GradeGood},
		{59.999, GradeAcceptable},
		{40.0, GradeAcceptable},
		{39.999, GradePoor},
		{0, GradePoor},
	}

	for _, tt := range tests {
		if got := gradeFor(tt.composite); got != tt.want {
			t.Errorf("gradeFor(%v) = %v, want %v", tt.composite, got, tt.want)
		}
	}
}

func TestSubScoreShapes(t *testing.T) {
	s := newTestScorer(t)

	t.Run("sharpness saturates", func(t *testing.T) {
		if got := s.sharpnessScore(500); got != 100 {
			t.Errorf("sharpnessScore(500) = %v, want 100", got)
		}
		if got := s.sharpnessScore(1000); got != 100 {
			t.Errorf("sharpnessScore(1000) = %v, want 100", got)
		}
		if got := s.sharpnessScore(250); got != 50 {
			t.Errorf("sharpnessScore(250) = %v, want 50", got)
		}
	})

	t.Run("brightness peaks in ideal band", func(t *testing.T) {
		for _, b := range []float64{100, 125, 150} {
			if got := s.brightnessScore(b); got != 100 {
				t.Errorf("brightnessScore(%v) = %v, want 100", b, got)
			}
		}
		if dark, bright := s.brightnessScore(60), s.brightnessScore(190); dark >= 100 || bright >= 100 {
			t.Errorf("out-of-band brightness not penalized: dark=%v bright=%v", dark, bright)
		}
		// Symmetric distances from the band give symmetric penalties.
		if d, b := s.brightnessScore(80), s.brightnessScore(170); d != b {
			t.Errorf("asymmetric penalty: brightnessScore(80)=%v brightnessScore(170)=%v", d, b)
		}
	})

	t.Run("contrast saturates", func(t *testing.T) {
		if got := s.contrastScore(50); got != 100 {
			t.Errorf("contrastScore(50) = %v, want 100", got)
		}
		if got := s.contrastScore(25); got != 50 {
			t.Errorf("contrastScore(25) = %v, want 50", got)
		}
	})

	t.Run("resolution saturates at reference", func(t *testing.T) {
		if got := s.resolutionScore(1920, 1080); got != 100 {
			t.Errorf("resolutionScore(1920, 1080) = %v, want 100", got)
		}
		if got := s.resolutionScore(3840, 2160); got != 100 {
			t.Errorf("resolutionScore(3840, 2160) = %v, want 100", got)
		}
		got := s.resolutionScore(960, 1080)
		if math.Abs(got-50) > 1e-9 {
			t.Errorf("resolutionScore(960, 1080) = %v, want 50", got)
		}
	})
}

func TestScoreInvalidSignals(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name   string
		mutate func(*RawSignals)
	}{
		{"negative blur", func(r *RawSignals) { r.BlurScore = -1 }},
		{"brightness above 255", func(r *RawSignals) { r.Brightness = 300 }},
		{"negative brightness", func(r *RawSignals) { r.Brightness = -5 }},
		{"negative contrast", func(r *RawSignals) { r.Contrast = -0.1 }},
		{"zero width", func(r *RawSignals) { r.Width = 0 }},
		{"negative height", func(r *RawSignals) { r.Height = -100 }},
		{"negative file size", func(r *RawSignals) { r.FileSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := goodSignals()
			tt.mutate(&signals)

			_, err := s.Score(signals)
			if !errors.Is(err, ErrInvalidSignals) {
				t.Errorf("Score() error = %v, want ErrInvalidSignals", err)
			}
		})
	}
}

func TestScoreDeterminism(t *testing.T) {
	s := newTestScorer(t)
	signals := RawSignals{BlurScore: 320, Brightness: 90, Contrast: 30, Width: 1400, Height: 900}

	first, err := s.Score(signals)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := s.Score(signals)
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if again.Composite != first.Composite || again.Grade != first.Grade {
			t.Fatalf("run %d diverged: %+v vs %+v", i, again, first)
		}
		if len(again.Suggestions) != len(first.Suggestions) {
			t.Fatalf("suggestion count diverged: %v vs %v", again.Suggestions, first.Suggestions)
		}
		for j := range again.Suggestions {
			if again.Suggestions[j] != first.Suggestions[j] {
				t.Fatalf("suggestion order diverged at %d: %q vs %q", j, again.Suggestions[j], first.Suggestions[j])
			}
		}
	}
}
