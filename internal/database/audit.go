// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/tomtom215/agenda/internal/models"
)

// AppendAudit writes one audit entry and sets e.ID from the sequence.
func (q *Queries) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	err := q.x.QueryRowContext(ctx, `
		INSERT INTO audit_entries (operation, table_name, record_id, old_value, new_value, timestamp, origin)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		string(e.Operation), e.Table, e.RecordID,
		nullableJSON(e.OldValue), nullableJSON(e.NewValue),
		e.Timestamp.UTC(), e.Origin).Scan(&e.ID)
	return models.WrapIO("append audit entry", err)
}

const auditColumns = `id, operation, table_name, record_id, old_value, new_value, timestamp, origin`

// ListAudit returns entries with from <= timestamp < to in insertion
// order. A zero bound is open.
func (q *Queries) ListAudit(ctx context.Context, from, to time.Time) ([]*models.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE 1 = 1`
	var args []any
	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += ` AND timestamp < ?`
		args = append(args, to.UTC())
	}
	query += ` ORDER BY id`

	rows, err := q.x.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.WrapIO("list audit entries", err)
	}
	defer rows.Close()

	entries := []*models.AuditEntry{}
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, models.WrapIO("list audit entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list audit entries", err)
	}
	return entries, nil
}

// LatestAudit returns the most recent entry, or nil when the journal is empty.
func (q *Queries) LatestAudit(ctx context.Context) (*models.AuditEntry, error) {
	row := q.x.QueryRowContext(ctx, `SELECT `+auditColumns+` FROM audit_entries ORDER BY id DESC LIMIT 1`)
	e, err := scanAudit(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapIO("latest audit entry", err)
	}
	return e, nil
}

// CountAudit returns the number of audit entries.
func (q *Queries) CountAudit(ctx context.Context) (int, error) {
	return q.count(ctx, "count audit entries", `SELECT COUNT(*) FROM audit_entries`)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAudit(r rowScanner) (*models.AuditEntry, error) {
	var (
		e          models.AuditEntry
		op         string
		oldV, newV sql.NullString
	)
	if err := r.Scan(&e.ID, &op, &e.Table, &e.RecordID, &oldV, &newV, &e.Timestamp, &e.Origin); err != nil {
		return nil, err
	}
	e.Operation = models.Operation(op)
	if oldV.Valid {
		e.OldValue = []byte(oldV.String)
	}
	if newV.Valid {
		e.NewValue = []byte(newV.String)
	}
	e.Timestamp = e.Timestamp.UTC()
	return &e, nil
}
