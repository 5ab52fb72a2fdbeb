// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package api exposes the engine over a local HTTP surface.

It is a thin transport: every handler calls one Gateway, backup,
audit or stats operation and wraps the result in the standard envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "trabajos \"x\" not found"}, "meta": {...}}

Typed engine errors map to statuses:

	*models.NotFoundError      404 NOT_FOUND
	*models.ValidationError    400 VALIDATION_FAILED
	backup.ErrBackupInProgress 409 CONFLICT
	*models.CompressionError   400 VALIDATION_FAILED
	anything else              500 INTERNAL_ERROR

Routes (all under /api/v1 except /metrics):

	GET    /health
	GET    /jobs                    ?estado=&cliente=
	POST   /jobs
	GET    /jobs/{id}
	PATCH  /jobs/{id}
	DELETE /jobs/{id}
	GET    /jobs/{id}/tasks         ?estado=&prioridad=&completada=&fecha=
	GET    /tasks                   ?trabajoId=&estado=&prioridad=&completada=&fecha=
	POST   /tasks
	GET    /tasks/pending
	GET    /tasks/completed
	GET    /tasks/day/{date}
	GET    /tasks/{id}
	PATCH  /tasks/{id}
	DELETE /tasks/{id}
	PUT    /tasks/{id}/status
	GET    /tasks/{id}/cost
	GET    /config
	GET    /config/{key}
	PUT    /config/{key}
	GET    /stats
	GET    /stats/current
	GET    /stats/history           ?limit=
	GET    /audit                   ?from=&to= (RFC 3339)
	GET    /backups
	POST   /backups
	GET    /backups/export
	POST   /backups/import
	GET    /backups/{id}
	DELETE /backups/{id}
	POST   /backups/{id}/restore
	GET    /changes
	GET    /changes/ws
	GET    /metrics

Middleware: request id with logging context, panic recovery, go-chi/cors,
go-chi/httprate and Prometheus request metrics.
*/
package api
