// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package quality

import "fmt"

// Flag names emitted in Report.Flags.
const (
	FlagBlurry              = "blurry"
	FlagSlightlyBlurry      = "slightly_blurry"
	FlagTooDark             = "too_dark"
	FlagDark                = "dark"
	FlagBright              = "bright"
	FlagTooBright           = "too_bright"
	FlagLowContrast         = "low_contrast"
	FlagModerateContrast    = "moderate_contrast"
	FlagLowResolution       = "low_resolution"
	FlagModerateResolution  = "moderate_resolution"
	FlagUnusualAspectRatio  = "unusual_aspect_ratio"
	FlagVeryLowPixelCount   = "very_low_pixel_count"
)

// flags derives the quality warning flags. The evaluation order is fixed
// so identical inputs always yield an identical flag list.
func (s *Scorer) flags(signals RawSignals, subs SubScores) []string {
	flags := make([]string, 0, 4)

	switch {
	case signals.BlurScore < s.cfg.ModerateBlurScore:
		flags = append(flags, FlagBlurry)
	case signals.BlurScore < s.cfg.SharpBlurScore:
		flags = append(flags, FlagSlightlyBlurry)
	}

	switch {
	case signals.Brightness < s.cfg.DarkBrightness:
		flags = append(flags, FlagTooDark)
	case signals.Brightness < s.cfg.BrightnessIdealLow:
		flags = append(flags, FlagDark)
	case signals.Brightness > s.cfg.BrightBrightness:
		flags = append(flags, FlagTooBright)
	case signals.Brightness > s.cfg.BrightnessIdealHigh:
		flags = append(flags, FlagBright)
	}

	switch {
	case subs.Contrast < 40:
		flags = append(flags, FlagLowContrast)
	case subs.Contrast < 70:
		flags = append(flags, FlagModerateContrast)
	}

	pixels := signals.Width * signals.Height
	switch {
	case pixels < 480_000: // below 800x600
		flags = append(flags, FlagVeryLowPixelCount)
	case pixels < 960_000: // below 1200x800
		flags = append(flags, FlagLowResolution)
	case signals.Width < s.cfg.ReferenceWidth || signals.Height < s.cfg.ReferenceHeight:
		flags = append(flags, FlagModerateResolution)
	}

	aspect := float64(signals.Width) / float64(signals.Height)
	if aspect < 0.7 || aspect > 1.5 {
		flags = append(flags, FlagUnusualAspectRatio)
	}

	return flags
}

// suggestionRule is one entry in the fixed suggestion table: when the
// predicate holds, the message is emitted.
type suggestionRule struct {
	applies func(signals RawSignals, r Report) bool
	message func(signals RawSignals, r Report) string
}

// suggestionTable is evaluated in order; the order is part of the output
// contract, so new rules are appended rather than inserted.
var suggestionTable = []suggestionRule{
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagBlurry) },
		message: func(_ RawSignals, _ Report) string {
			return "Image appears blurry - use a tripod or faster shutter speed for a sharper capture"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagSlightlyBlurry) },
		message: func(_ RawSignals, _ Report) string {
			return "Slight blur detected - lock focus and stabilize the camera so product details stay crisp"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagTooDark) },
		message: func(_ RawSignals, _ Report) string {
			return "Image is too dark - add fill lighting or shoot near a window"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagDark) },
		message: func(_ RawSignals, _ Report) string {
			return "Image is slightly dark - a fill light would reveal more detail"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagTooBright) },
		message: func(_ RawSignals, _ Report) string {
			return "Image is overexposed - reduce exposure or diffuse the light source"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagBright) },
		message: func(_ RawSignals, _ Report) string {
			return "Image is slightly bright - watch for blown-out highlights"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagLowContrast) },
		message: func(_ RawSignals, _ Report) string {
			return "Low contrast makes the product look flat - try a contrasting background"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagModerateContrast) },
		message: func(_ RawSignals, _ Report) string {
			return "Contrast could be improved for better product definition"
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagVeryLowPixelCount) },
		message: func(s RawSignals, _ Report) string {
			return fmt.Sprintf("Resolution %dx%d is too small - at least 1200x800 is recommended", s.Width, s.Height)
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagLowResolution) },
		message: func(s RawSignals, _ Report) string {
			return fmt.Sprintf("Resolution %dx%d is low - 1920x1080 gives customers room to zoom", s.Width, s.Height)
		},
	},
	{
		applies: func(_ RawSignals, r Report) bool { return hasFlag(r, FlagUnusualAspectRatio) },
		message: func(_ RawSignals, r Report) string {
			return fmt.Sprintf("Unusual aspect ratio (%.2f:1) may crop poorly - square or 4:3 framing displays best", r.AspectRatio)
		},
	},
}

// suggestions evaluates the rule table in its fixed order, then appends
// a catch-all for any sub-score below the good threshold that no flag
// rule covered.
func (s *Scorer) suggestions(signals RawSignals, r Report) []string {
	out := make([]string, 0, 4)
	for _, rule := range suggestionTable {
		if rule.applies(signals, r) {
			out = append(out, rule.message(signals, r))
		}
	}

	// Resolution can score below the good threshold without tripping a
	// pixel-count flag (for example a wide banner crop); cover it here.
	if r.SubScores.Resolution < s.cfg.GoodSubScore && !hasFlag(r, FlagVeryLowPixelCount) && !hasFlag(r, FlagLowResolution) {
		out = append(out, fmt.Sprintf("Resolution %dx%d is below the %dx%d target for hero placement",
			signals.Width, signals.Height, s.cfg.ReferenceWidth, s.cfg.ReferenceHeight))
	}

	return out
}

func hasFlag(r Report, flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
