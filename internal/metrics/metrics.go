// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
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

	// Position Ledger Metrics
	LedgerAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_appends_total",
			Help: "Total number of videos appended to experiments",
		},
	)

	LedgerReordersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reorders_total",
			Help: "Total number of reorder attempts by outcome",
		},
		[]string{"outcome"}, // "applied", "count_mismatch", "duplicate_id", "unknown_id"
	)

	// Feed Composition Metrics
	FeedCompositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_compositions_total",
			Help: "Total number of feed compositions by mode",
		},
		[]string{"mode"}, // "preview", "identity", "shuffled"
	)

	FeedCompositionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_composition_duration_seconds",
			Help:    "Feed composition duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	// Integrity warnings indicate upstream data corruption (out-of-bounds
	// locked positions, slot exhaustion), never participant-visible errors.
	FeedIntegrityWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_integrity_warnings_total",
			Help: "Total number of feed composition data-integrity degradations",
		},
		[]string{"kind"}, // "locked_out_of_bounds", "unlocked_exhausted"
	)
)
