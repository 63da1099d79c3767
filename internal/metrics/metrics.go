// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Analysis Pipeline Metrics
	AnalysesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_analyses_total",
			Help: "Total number of completed batch analyses",
		},
	)

	AnalysisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carousel_analysis_errors_total",
			Help: "Total number of failed batch analyses",
		},
		[]string{"error_type"}, // "invalid_input", "quality", "similarity", "ordering"
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carousel_analysis_duration_seconds",
			Help:    "End-to-end duration of batch analyses in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	AnalysisBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carousel_analysis_batch_size",
			Help:    "Number of images per analysed batch",
			Buckets: []float64{2, 3, 4, 6, 8, 10, 12},
		},
	)

	DuplicatePairsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_duplicate_pairs_total",
			Help: "Total number of duplicate image pairs detected",
		},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carousel_sessions_active",
			Help: "Current number of live analysis sessions",
		},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_sessions_expired_total",
			Help: "Total number of sessions removed by TTL expiry",
		},
	)

	// Result Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_result_cache_hits_total",
			Help: "Total number of analysis result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carousel_result_cache_misses_total",
			Help: "Total number of analysis result cache misses",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carousel_result_cache_entries",
			Help: "Current number of cached analysis results",
		},
	)

	// HTTP API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordAnalysis records a successful batch analysis.
func RecordAnalysis(batchSize, duplicatePairs int, duration time.Duration) {
	AnalysesTotal.Inc()
	AnalysisDuration.Observe(duration.Seconds())
	AnalysisBatchSize.Observe(float64(batchSize))
	DuplicatePairsDetected.Add(float64(duplicatePairs))
}

// RecordAnalysisError records a failed batch analysis by stage.
func RecordAnalysisError(errorType string) {
	AnalysisErrors.WithLabelValues(errorType).Inc()
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
