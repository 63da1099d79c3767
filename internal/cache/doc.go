// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package cache provides a thread-safe in-memory TTL cache for analysis
// results. Keys are derived from the session id and the exact image set,
// so any change to a session's images naturally misses the cache.
package cache
