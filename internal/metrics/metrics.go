// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

// Package metrics provides Prometheus instrumentation for TowerAtlas.
// Collectors are registered on the default registry and exposed at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toweratlas_api_requests_total",
			Help: "Total API requests by method, endpoint and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toweratlas_api_request_duration_seconds",
			Help:    "API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "toweratlas_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toweratlas_db_query_duration_seconds",
			Help:    "Database query latency by operation",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	dbQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toweratlas_db_query_errors_total",
			Help: "Database query failures by operation",
		},
		[]string{"operation"},
	)

	sweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toweratlas_grant_sweep_runs_total",
			Help: "Total grant sweep executions",
		},
	)

	sweepRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toweratlas_grant_sweep_removed_total",
			Help: "Total materialized assignments removed by sweeps",
		},
	)

	notificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toweratlas_notifications_sent_total",
			Help: "Notifications emitted by category",
		},
		[]string{"category"},
	)

	auditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "toweratlas_audit_events_dropped_total",
			Help: "Audit events dropped because the async buffer was full",
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	apiRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		activeRequests.Inc()
	} else {
		activeRequests.Dec()
	}
}

// RecordDBQuery records a database query's duration and error state.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		dbQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSweep records a sweep run and the number of assignments it removed.
func RecordSweep(removed int) {
	sweepRunsTotal.Inc()
	sweepRemovedTotal.Add(float64(removed))
}

// RecordNotification records an emitted notification.
func RecordNotification(category string) {
	notificationsSent.WithLabelValues(category).Inc()
}

// RecordAuditDrop records an audit event dropped due to buffer pressure.
func RecordAuditDrop() {
	auditEventsDropped.Inc()
}
