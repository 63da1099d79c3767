// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package analysis orchestrates a full batch analysis: per-image quality
// scoring, pairwise similarity detection, and carousel ordering, combined
// into a single result.
//
// Quality scoring is fanned out across a bounded worker pool since each
// image is scored independently; similarity detection and ordering run
// after all scores are in because they need the whole batch. Results are
// deterministic for a given set of inputs regardless of worker scheduling.
package analysis
