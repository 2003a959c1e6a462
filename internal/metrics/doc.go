// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package metrics provides Prometheus instrumentation for production
// observability: API latency and throughput, position ledger operations,
// and feed composition outcomes including data-integrity degradations.
//
// Collectors are package-level variables registered via promauto so any
// component can record without plumbing a registry; the default registry
// is served at /metrics.
package metrics
