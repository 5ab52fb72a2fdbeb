// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status           string     `json:"status"`
	Version          string     `json:"version,omitempty"`
	Database         string     `json:"database"`
	SchedulerRunning bool       `json:"schedulerRunning"`
	NextBackup       *time.Time `json:"nextBackup,omitempty"`
	BackupInProgress bool       `json:"backupInProgress"`
}

// Health handles GET /health. An unreachable database answers 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	status := HealthStatus{Status: "ok", Version: h.deps.Version, Database: "ok"}

	if h.deps.DB != nil {
		if err := h.deps.DB.Ping(r.Context()); err != nil {
			status.Status = "degraded"
			status.Database = err.Error()
		}
	}
	if h.deps.Scheduler != nil {
		status.SchedulerRunning = h.deps.Scheduler.Running()
		if next := h.deps.Scheduler.NextRun(); !next.IsZero() {
			status.NextBackup = &next
		}
	}
	if h.deps.Backups != nil {
		status.BackupInProgress = h.deps.Backups.InProgress()
	}

	if status.Status != "ok" {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeUnavailable, "database unreachable", status)
		return
	}
	rw.Success(status)
}

// Changes handles GET /changes with the change observer's snapshot.
func (h *Handler) Changes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.deps.Observer == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeUnavailable, "change observer not running")
		return
	}
	snap, err := h.deps.Observer.Snapshot(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(snap)
}
