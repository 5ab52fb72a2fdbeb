// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// backupSummary describes a generated backup without its data.
type backupSummary struct {
	SchemaVersion int             `json:"schemaVersion"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	Compressed    bool            `json:"compressed"`
	Metadata      backup.Metadata `json:"metadata"`
}

func summarize(p *backup.Payload) backupSummary {
	return backupSummary{
		SchemaVersion: p.SchemaVersion,
		GeneratedAt:   p.GeneratedAt,
		Compressed:    p.Compressed,
		Metadata:      p.Metadata,
	}
}

// ListBackups handles GET /backups, newest first, without payloads.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	records, err := h.deps.Backups.ListBackups(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(records, len(records))
}

// GenerateBackup handles POST /backups. A backup already running answers
// 409.
func (h *Handler) GenerateBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	p, err := h.deps.Backups.Generate(r.Context(), models.BackupManual)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Created(summarize(p))
}

// GetBackup handles GET /backups/{id} including the stored payload.
func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := pathInt64(r, "id")
	if err != nil {
		rw.Failure(err)
		return
	}
	record, err := h.deps.Backups.GetBackup(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(record)
}

// DeleteBackup handles DELETE /backups/{id}.
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := pathInt64(r, "id")
	if err != nil {
		rw.Failure(err)
		return
	}
	deleted, err := h.deps.Backups.DeleteBackup(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(deleteResult{ID: strconv.FormatInt(id, 10), Deleted: deleted})
}

// RestoreBackup handles POST /backups/{id}/restore.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := pathInt64(r, "id")
	if err != nil {
		rw.Failure(err)
		return
	}
	result, err := h.deps.Backups.RestoreFromRecord(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(result)
}

// ExportBackup handles GET /backups/export. It generates a manual backup
// and returns it as a downloadable file rather than an envelope.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	p, err := h.deps.Backups.ExportTo(r.Context(), &buf)
	if err != nil {
		NewResponseWriter(w, r).Failure(err)
		return
	}

	name := backup.ExportFileName(p.GeneratedAt.Local())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Export download interrupted")
	}
}

// ImportBackup handles POST /backups/import with a backup file as the body.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	result, err := h.deps.Backups.ImportFrom(r.Context(), http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(result)
}
