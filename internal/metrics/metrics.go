// StupidNeko - Language Learning Activity Tracking
// Copyright 2026 Joshykins
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Joshykins/stupid-neko

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the activity pipeline:
// - Event intake outcomes
// - Label processing throughput and failures
// - Translator batch behavior (sessions finalized, events discarded)
// - Experience awards
// - API endpoint latency and throughput

var (
	// Event intake metrics
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_recorded_total",
			Help: "Total raw content events accepted, by source and activity type",
		},
		[]string{"source", "activity_type"},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_rejected_total",
			Help: "Total events rejected before persistence",
		},
		[]string{"reason"}, // "blocked_policy", "invalid", "unknown_user"
	)

	// Label pipeline metrics
	LabelsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_labels_created_total",
			Help: "Total content labels created lazily on first sight of a key",
		},
		[]string{"source"},
	)

	LabelProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "label_processing_duration_seconds",
			Help:    "Duration of label enrichment per content source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	LabelProcessingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "label_processing_failures_total",
			Help: "Total label enrichment failures",
		},
		[]string{"source"},
	)

	LanguageDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "language_detections_total",
			Help: "Total language detection calls, by outcome",
		},
		[]string{"outcome"}, // "detected", "unknown", "cached", "error"
	)

	// Translator metrics
	TranslatorRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translator_runs_total",
			Help: "Total translator batch executions",
		},
	)

	TranslatorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translator_run_duration_seconds",
			Help:    "Duration of a full translator batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	SessionsFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_finalized_total",
			Help: "Total sessions folded into completed activities",
		},
	)

	SessionsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_discarded_total",
			Help: "Total sessions discarded without producing an activity",
		},
		[]string{"reason"}, // "too_short", "not_target_language"
	)

	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total raw events deleted after folding",
		},
	)

	// Experience metrics
	ExperienceAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "experience_awarded_total",
			Help: "Total experience points awarded (reversals excluded)",
		},
	)

	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total level-up transitions across all users",
		},
	)

	// API endpoint metrics
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
)

// RecordAPIRequest records metrics for one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
