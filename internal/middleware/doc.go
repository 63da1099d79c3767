// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

/*
Package middleware provides HTTP middleware for the API server.

Components:

  - RequestID: UUID-based request tracking; honors X-Request-ID from
    upstream proxies and attaches the id to the request context so every
    log line for the request carries it.
  - PrometheusMetrics: per-request instrumentation (count, latency,
    in-flight gauge) recorded against the route pattern, not the raw
    URL, to keep label cardinality bounded.
  - Compression: gzip for JSON responses above 1KB when the client sends
    Accept-Encoding: gzip.

All middleware use the func(http.Handler) http.Handler shape chi expects
and are safe for concurrent use.
*/
package middleware
