// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/agenda/internal/models"
)

var (
	// Gateway Metrics
	GatewayOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_gateway_operations_total",
			Help: "Total number of gateway operations",
		},
		[]string{"operation", "table", "result"},
	)

	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_gateway_operation_duration_seconds",
			Help:    "Gateway operation duration in seconds, including audit and statistics",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)

	// Audit Metrics
	AuditEntriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_audit_entries_total",
			Help: "Total number of audit entries written",
		},
		[]string{"operation"},
	)

	AuditFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_audit_failures_total",
			Help: "Audit entries that could not be written and were dropped",
		},
	)

	// Statistics Metrics
	StatisticsSnapshots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_statistics_snapshots_total",
			Help: "Total number of statistics snapshots appended",
		},
	)

	StatisticsFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_statistics_failures_total",
			Help: "Statistics recomputations that failed and were skipped",
		},
	)

	// Backup Metrics
	BackupsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_backups_generated_total",
			Help: "Total number of backups generated",
		},
		[]string{"kind", "result"},
	)

	BackupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agenda_backup_duration_seconds",
			Help:    "Backup generation duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	BackupSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_backup_last_size_bytes",
			Help: "Stored size of the most recent backup",
		},
	)

	BackupsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_backups_evicted_total",
			Help: "Backups removed by retention",
		},
	)

	BackupsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_backups_rejected_total",
			Help: "Backup requests rejected because another generation was in flight",
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_backup_last_success_timestamp",
			Help: "Unix timestamp of the last successful backup",
		},
	)

	Restores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_restores_total",
			Help: "Total number of restore attempts",
		},
		[]string{"result"},
	)

	// Forward Metrics
	ForwardAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_forward_attempts_total",
			Help: "Remote backup forward attempts",
		},
		[]string{"forwarder", "result"},
	)

	SpoolDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_forward_spool_depth",
			Help: "Backups waiting in the forward spool",
		},
	)

	SpoolDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_forward_spool_dropped_total",
			Help: "Spooled forwards abandoned after the maximum attempts",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agenda_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Change Feed Metrics
	ChangeEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_change_events_total",
			Help: "Change events published to the in-process feed",
		},
		[]string{"table", "operation"},
	)

	ChangeEventFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_change_event_failures_total",
			Help: "Change events that could not be published",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agenda_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agenda_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agenda_websocket_connections_active",
			Help: "Active WebSocket subscribers of the change feed",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agenda_websocket_messages_sent_total",
			Help: "Change events delivered to WebSocket subscribers",
		},
	)
)

// RecordGatewayOperation records one gateway call and its outcome.
func RecordGatewayOperation(operation, table string, duration time.Duration, err error) {
	GatewayOperations.WithLabelValues(operation, table, resultLabel(err)).Inc()
	GatewayDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordBackup records a finished generate call.
func RecordBackup(kind string, duration time.Duration, sizeBytes int64, err error) {
	BackupsGenerated.WithLabelValues(kind, resultLabel(err)).Inc()
	BackupDuration.Observe(duration.Seconds())
	if err == nil {
		BackupSizeBytes.Set(float64(sizeBytes))
		BackupLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRestore records a restore attempt.
func RecordRestore(err error) {
	Restores.WithLabelValues(resultLabel(err)).Inc()
}

// RecordForward records a forward attempt by forwarder name.
func RecordForward(forwarder string, err error) {
	ForwardAttempts.WithLabelValues(forwarder, resultLabel(err)).Inc()
}

// RecordBreakerTransition records a circuit breaker state change. State
// values follow gobreaker: 0 closed, 1 half-open, 2 open.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// resultLabel buckets an error by its taxonomy class so label
// cardinality stays fixed.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrValidation):
		return "validation"
	case errors.Is(err, models.ErrCompression):
		return "compression"
	case errors.Is(err, models.ErrSchema):
		return "schema"
	case errors.Is(err, models.ErrIO):
		return "io"
	default:
		return "error"
	}
}
