// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package metrics provides Prometheus metrics for the engine.

All collectors are registered on the default registry through promauto and
served at /metrics by internal/api when the HTTP surface is enabled.

# Available Metrics

Gateway:
  - agenda_gateway_operations_total: Gateway calls (counter)
    Labels: operation, table, result
  - agenda_gateway_operation_duration_seconds: Call latency (histogram)
    Labels: operation, table

Audit and statistics:
  - agenda_audit_entries_total (counter, label operation)
  - agenda_audit_failures_total: Entries dropped after a write error
  - agenda_statistics_snapshots_total
  - agenda_statistics_failures_total

Backups:
  - agenda_backups_generated_total (labels kind, result)
  - agenda_backup_duration_seconds (histogram)
  - agenda_backup_last_size_bytes, agenda_backup_last_success_timestamp
  - agenda_backups_evicted_total, agenda_backups_rejected_total
  - agenda_restores_total (label result)

Remote forward:
  - agenda_forward_attempts_total (labels forwarder, result)
  - agenda_forward_spool_depth, agenda_forward_spool_dropped_total
  - agenda_circuit_breaker_state (label name; 0=closed, 1=half-open, 2=open)
  - agenda_circuit_breaker_transitions_total (labels name, from, to)

Change feed, API and WebSocket:
  - agenda_change_events_total, agenda_change_event_failures_total
  - agenda_api_requests_total, agenda_api_request_duration_seconds,
    agenda_api_active_requests
  - agenda_websocket_connections_active, agenda_websocket_messages_sent_total

The result label is derived from the error taxonomy in internal/models
(success, not_found, validation, compression, schema, io, error), which
keeps label cardinality fixed.
*/
package metrics
