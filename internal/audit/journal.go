// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
)

// Store persists audit entries. *database.Queries implements it.
type Store interface {
	AppendAudit(ctx context.Context, e *models.AuditEntry) error
	ListAudit(ctx context.Context, from, to time.Time) ([]*models.AuditEntry, error)
	LatestAudit(ctx context.Context) (*models.AuditEntry, error)
	CountAudit(ctx context.Context) (int, error)
}

// Journal records mutations for one engine instance.
type Journal struct {
	store  Store
	origin string
	now    func() time.Time
}

// NewJournal returns a journal writing to store and stamping origin on
// every entry.
func NewJournal(store Store, origin string) *Journal {
	return &Journal{store: store, origin: origin, now: time.Now}
}

// Append records one mutation. oldValue is nil for creates and newValue is
// nil for deletes. Failures are logged and swallowed.
func (j *Journal) Append(ctx context.Context, op models.Operation, table, recordID string, oldValue, newValue any) {
	entry := &models.AuditEntry{
		Operation: op,
		Table:     table,
		RecordID:  recordID,
		Timestamp: j.now().UTC().Truncate(time.Microsecond),
		Origin:    j.origin,
	}

	var err error
	if entry.OldValue, err = snapshot(oldValue); err == nil {
		entry.NewValue, err = snapshot(newValue)
	}
	if err == nil {
		err = j.store.AppendAudit(ctx, entry)
	}
	if err != nil {
		metrics.AuditFailures.Inc()
		logging.Ctx(ctx).Error().
			Err(err).
			Str("operation", string(op)).
			Str("table", table).
			Str("record_id", recordID).
			Msg("Failed to write audit entry")
		return
	}

	metrics.AuditEntriesWritten.WithLabelValues(string(op)).Inc()
	logging.Ctx(ctx).Debug().
		Int64("audit_id", entry.ID).
		Str("operation", string(op)).
		Str("table", table).
		Str("record_id", recordID).
		Msg("Audit entry written")
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	switch raw := v.(type) {
	case json.RawMessage:
		return raw, nil
	case []byte:
		return raw, nil
	}
	return json.Marshal(v)
}

// QueryByTimeRange returns entries with from <= timestamp < to in
// insertion order. A zero bound is open.
func (j *Journal) QueryByTimeRange(ctx context.Context, from, to time.Time) ([]*models.AuditEntry, error) {
	return j.store.ListAudit(ctx, from, to)
}

// Latest returns the most recent entry, or nil when nothing was recorded.
func (j *Journal) Latest(ctx context.Context) (*models.AuditEntry, error) {
	return j.store.LatestAudit(ctx)
}

// Count returns the number of entries.
func (j *Journal) Count(ctx context.Context) (int, error) {
	return j.store.CountAudit(ctx)
}
