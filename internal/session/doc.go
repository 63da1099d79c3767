// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package session manages analysis sessions: short-lived server-side
// workspaces a client fills with images before requesting an analysis.
// Sessions expire on a sliding TTL and are swept by a supervised janitor.
package session
