// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package quality

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSignals indicates a raw signal is missing or outside its
// sane range. It is fatal for the image, not for the batch; the caller
// decides whether to exclude the image or abort.
var ErrInvalidSignals = errors.New("invalid raw signals")

// RawSignals holds the per-image measurements produced by the upstream
// signal measurer. All fields are set once at ingestion.
type RawSignals struct {
	// BlurScore is the Laplacian variance of the image; higher is sharper.
	BlurScore float64 `json:"blur_score"`

	// Brightness is the mean grayscale value, 0-255.
	Brightness float64 `json:"brightness"`

	// Contrast is the grayscale standard deviation; higher is better.
	Contrast float64 `json:"contrast"`

	// Width and Height are the image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// FileSize is the encoded size in bytes.
	FileSize int64 `json:"file_size"`

	// Format is the image format (JPEG, PNG, WEBP, ...).
	Format string `json:"format"`
}

// Grade is the discrete quality tier derived from the composite score.
type Grade string

const (
	GradeExceptional  Grade = "EXCEPTIONAL"
	GradeProfessional Grade = "PROFESSIONAL"
	GradeGood         Grade = "GOOD"
	GradeAcceptable   Grade = "ACCEPTABLE"
	GradePoor         Grade = "POOR"
)

// SubScores holds the normalized 0-100 per-signal scores.
type SubScores struct {
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Resolution float64 `json:"resolution"`
}

// Report is the full quality assessment for a single image.
type Report struct {
	// Composite is the weighted 0-100 quality score.
	Composite float64 `json:"composite_score"`

	// Grade is the discrete tier for Composite.
	Grade Grade `json:"grade"`

	// SubScores is the per-signal score breakdown.
	SubScores SubScores `json:"sub_scores"`

	// Flags lists detected quality issues (blurry, too_dark, ...).
	Flags []string `json:"flags"`

	// Suggestions lists human-readable remediation advice. May be empty
	// when every sub-score clears its good threshold.
	Suggestions []string `json:"suggestions"`

	// Megapixels is the total pixel count in millions.
	Megapixels float64 `json:"megapixels"`

	// AspectRatio is width divided by height.
	AspectRatio float64 `json:"aspect_ratio"`
}

// Weights defines the contribution of each sub-score to the composite.
// Weights must sum to 1.0.
type Weights struct {
	Sharpness  float64 `json:"sharpness" koanf:"sharpness"`
	Brightness float64 `json:"brightness" koanf:"brightness"`
	Contrast   float64 `json:"contrast" koanf:"contrast"`
	Resolution float64 `json:"resolution" koanf:"resolution"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Sharpness + w.Brightness + w.Contrast + w.Resolution
}

// Config holds the scoring thresholds and weights.
type Config struct {
	// Weights controls the composite weighting. Must sum to 1.0.
	Weights Weights `json:"weights" koanf:"weights"`

	// SharpBlurScore is the blur score at which sharpness earns full
	// marks. The moderate band starts at ModerateBlurScore.
	SharpBlurScore    float64 `json:"sharp_blur_score" koanf:"sharp_blur_score"`
	ModerateBlurScore float64 `json:"moderate_blur_score" koanf:"moderate_blur_score"`

	// BrightnessIdealLow and BrightnessIdealHigh delimit the band that
	// earns full brightness marks. DarkBrightness and BrightBrightness
	// are the flag cutoffs for too-dark and too-bright images.
	BrightnessIdealLow  float64 `json:"brightness_ideal_low" koanf:"brightness_ideal_low"`
	BrightnessIdealHigh float64 `json:"brightness_ideal_high" koanf:"brightness_ideal_high"`
	DarkBrightness      float64 `json:"dark_brightness" koanf:"dark_brightness"`
	BrightBrightness    float64 `json:"bright_brightness" koanf:"bright_brightness"`

	// FullContrast is the contrast at which the sub-score saturates.
	FullContrast float64 `json:"full_contrast" koanf:"full_contrast"`

	// ReferenceWidth and ReferenceHeight define the pixel count at which
	// the resolution sub-score saturates.
	ReferenceWidth  int `json:"reference_width" koanf:"reference_width"`
	ReferenceHeight int `json:"reference_height" koanf:"reference_height"`

	// GoodSubScore is the threshold below which a sub-score produces an
	// improvement suggestion.
	GoodSubScore float64 `json:"good_sub_score" koanf:"good_sub_score"`
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Sharpness:  0.40,
			Brightness: 0.25,
			Contrast:   0.25,
			Resolution: 0.10,
		},
		SharpBlurScore:      500,
		ModerateBlurScore:   300,
		BrightnessIdealLow:  100,
		BrightnessIdealHigh: 150,
		DarkBrightness:      80,
		BrightBrightness:    170,
		FullContrast:        50,
		ReferenceWidth:      1920,
		ReferenceHeight:     1080,
		GoodSubScore:        60,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	const epsilon = 1e-9
	if math.Abs(c.Weights.Sum()-1.0) > epsilon {
		return fmt.Errorf("quality weights must sum to 1.0, got %v", c.Weights.Sum())
	}
	if c.SharpBlurScore <= 0 || c.ModerateBlurScore <= 0 || c.ModerateBlurScore >= c.SharpBlurScore {
		return fmt.Errorf("blur thresholds must satisfy 0 < moderate (%v) < sharp (%v)",
			c.ModerateBlurScore, c.SharpBlurScore)
	}
	if c.BrightnessIdealLow >= c.BrightnessIdealHigh {
		return fmt.Errorf("brightness ideal band is empty: [%v, %v]",
			c.BrightnessIdealLow, c.BrightnessIdealHigh)
	}
	if c.FullContrast <= 0 {
		return fmt.Errorf("full contrast threshold must be positive, got %v", c.FullContrast)
	}
	if c.ReferenceWidth <= 0 || c.ReferenceHeight <= 0 {
		return fmt.Errorf("reference resolution must be positive, got %dx%d",
			c.ReferenceWidth, c.ReferenceHeight)
	}
	return nil
}

// Scorer converts raw signals into quality reports. It is stateless and
// safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the quality report for a single image. Pure function of
// its input: no cross-image state, no side effects.
func (s *Scorer) Score(signals RawSignals) (Report, error) {
	if err := validateSignals(signals); err != nil {
		return Report{}, err
	}

	subs := SubScores{
		Sharpness:  s.sharpnessScore(signals.BlurScore),
		Brightness: s.brightnessScore(signals.Brightness),
		Contrast:   s.contrastScore(signals.Contrast),
		Resolution: s.resolutionScore(signals.Width, signals.Height),
	}

	composite := clamp(
		subs.Sharpness*s.cfg.Weights.Sharpness+
			subs.Brightness*s.cfg.Weights.Brightness+
			subs.Contrast*s.cfg.Weights.Contrast+
			subs.Resolution*s.cfg.Weights.Resolution,
		0, 100)

	pixels := float64(signals.Width) * float64(signals.Height)

	report := Report{
		Composite:   composite,
		Grade:       gradeFor(composite),
		SubScores:   subs,
		Flags:       s.flags(signals, subs),
		Megapixels:  pixels / 1e6,
		AspectRatio: float64(signals.Width) / float64(signals.Height),
	}
	report.Suggestions = s.suggestions(signals, report)

	return report, nil
}

// validateSignals rejects missing or out-of-range measurements.
func validateSignals(s RawSignals) error {
	switch {
	case s.BlurScore < 0:
		return fmt.Errorf("%w: blur_score %v is negative", ErrInvalidSignals, s.BlurScore)
	case s.Brightness < 0 || s.Brightness > 255:
		return fmt.Errorf("%w: brightness %v outside [0, 255]", ErrInvalidSignals, s.Brightness)
	case s.Contrast < 0:
		return fmt.Errorf("%w: contrast %v is negative", ErrInvalidSignals, s.Contrast)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: resolution %dx%d is not positive", ErrInvalidSignals, s.Width, s.Height)
	case s.FileSize < 0:
		return fmt.Errorf("%w: file_size %d is negative", ErrInvalidSignals, s.FileSize)
	}
	return nil
}

// sharpnessScore grows linearly with the blur score and saturates at
// SharpBlurScore.
func (s *Scorer) sharpnessScore(blur float64) float64 {
	return clamp(blur/s.cfg.SharpBlurScore*100, 0, 100)
}

// brightnessScore is full inside the ideal band and falls off linearly
// with the distance from the nearer band edge.
func (s *Scorer) brightnessScore(brightness float64) float64 {
	var distance float64
	switch {
	case brightness < s.cfg.BrightnessIdealLow:
		distance = s.cfg.BrightnessIdealLow - brightness
	case brightness > s.cfg.BrightnessIdealHigh:
		distance = brightness - s.cfg.BrightnessIdealHigh
	}
	return clamp(100-distance, 0, 100)
}

// contrastScore grows linearly and saturates at FullContrast.
func (s *Scorer) contrastScore(contrast float64) float64 {
	return clamp(contrast/s.cfg.FullContrast*100, 0, 100)
}

// resolutionScore grows with total pixel count up to the reference
// resolution, then stays flat.
func (s *Scorer) resolutionScore(width, height int) float64 {
	reference := float64(s.cfg.ReferenceWidth) * float64(s.cfg.ReferenceHeight)
	pixels := float64(width) * float64(height)
	return clamp(pixels/reference*100, 0, 100)
}

// gradeFor maps a composite score to its discrete grade. Boundaries are
// inclusive: exactly 90.0 is EXCEPTIONAL.
func gradeFor(composite float64) Grade {
	switch {
	case composite >= 90:
		return GradeExceptional
	case composite >= 75:
		return GradeProfessional
	case composite >= 60:
		return GradeGood
	case composite >= 40:
		return GradeAcceptable
	default:
		return GradePoor
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
