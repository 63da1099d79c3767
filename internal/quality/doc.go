// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package quality converts raw per-image signal measurements into a
// normalized composite quality score, a discrete grade, and
// human-readable improvement suggestions.
//
// Scoring is purely local to a single image: the scorer never compares
// images against each other, so it is safe to run per-image scoring
// concurrently across a batch.
//
// # Sub-scores
//
// Each raw signal is mapped onto a 0-100 sub-score:
//
//   - Sharpness: linear in the Laplacian-variance blur score, saturating
//     at full marks once the score reaches the sharp threshold.
//   - Brightness: full marks inside an ideal band, linear penalty with
//     distance from the band outside it.
//   - Contrast: linear, saturating at the contrast threshold.
//   - Resolution: linear in total pixel count up to a reference
//     resolution (1920x1080), flat beyond it.
//
// The composite score is a weighted average of the sub-scores; weights
// sum to 1.0 and are tunable through Config.
//
// # Suggestions
//
// Improvement suggestions are generated from a fixed, ordered table of
// predicate/message rules so that identical reports always produce an
// identical suggestion list.
package quality
