// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline, the HTTP API, the session store, and the result cache. All
// collectors register on the default registry via promauto and are served
// from the /metrics endpoint.
package metrics
