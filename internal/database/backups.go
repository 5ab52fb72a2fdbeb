// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"time"

	"github.com/tomtom215/agenda/internal/models"
)

// InsertBackup stores a backup record and sets b.ID.
func (q *Queries) InsertBackup(ctx context.Context, b *models.BackupRecord) error {
	err := q.x.QueryRowContext(ctx, `
		INSERT INTO backups (date, kind, payload, size_bytes, forwarded)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		b.Date.UTC(), string(b.Kind), string(b.Payload), b.SizeBytes, b.Forwarded).Scan(&b.ID)
	return models.WrapIO("insert backup", err)
}

// ListBackups returns backup metadata, newest first. Payloads are omitted.
func (q *Queries) ListBackups(ctx context.Context) ([]*models.BackupRecord, error) {
	rows, err := q.x.QueryContext(ctx, `
		SELECT id, date, kind, size_bytes, forwarded FROM backups ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, models.WrapIO("list backups", err)
	}
	defer rows.Close()

	out := []*models.BackupRecord{}
	for rows.Next() {
		var (
			b    models.BackupRecord
			kind string
		)
		if err := rows.Scan(&b.ID, &b.Date, &kind, &b.SizeBytes, &b.Forwarded); err != nil {
			return nil, models.WrapIO("list backups", err)
		}
		b.Kind = models.BackupKind(kind)
		b.Date = b.Date.UTC()
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list backups", err)
	}
	return out, nil
}

// GetBackup returns one backup including its payload.
func (q *Queries) GetBackup(ctx context.Context, id int64) (*models.BackupRecord, error) {
	var (
		b             models.BackupRecord
		kind, payload string
	)
	err := q.x.QueryRowContext(ctx, `
		SELECT id, date, kind, payload, size_bytes, forwarded FROM backups WHERE id = ?`, id).
		Scan(&b.ID, &b.Date, &kind, &payload, &b.SizeBytes, &b.Forwarded)
	if isNoRows(err) {
		return nil, &models.NotFoundError{Table: "backups", ID: formatID(id)}
	}
	if err != nil {
		return nil, models.WrapIO("get backup", err)
	}
	b.Kind = models.BackupKind(kind)
	b.Payload = []byte(payload)
	b.Date = b.Date.UTC()
	return &b, nil
}

// DeleteBackup removes one backup record.
func (q *Queries) DeleteBackup(ctx context.Context, id int64) (bool, error) {
	res, err := q.x.ExecContext(ctx, `DELETE FROM backups WHERE id = ?`, id)
	if err != nil {
		return false, models.WrapIO("delete backup", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.WrapIO("delete backup", err)
	}
	return n > 0, nil
}

// MarkBackupForwarded records that the remote copy succeeded.
func (q *Queries) MarkBackupForwarded(ctx context.Context, id int64) error {
	_, err := q.x.ExecContext(ctx, `UPDATE backups SET forwarded = true WHERE id = ?`, id)
	return models.WrapIO("mark backup forwarded", err)
}

// EvictBackups deletes the oldest records (by date, then id) until at most
// keep remain, and returns how many were removed.
func (q *Queries) EvictBackups(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := q.x.ExecContext(ctx, `
		DELETE FROM backups WHERE id IN (
			SELECT id FROM backups ORDER BY date DESC, id DESC OFFSET ?
		)`, keep)
	if err != nil {
		return 0, models.WrapIO("evict backups", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, models.WrapIO("evict backups", err)
	}
	return int(n), nil
}

// CountBackups returns the number of retained backups.
func (q *Queries) CountBackups(ctx context.Context) (int, error) {
	return q.count(ctx, "count backups", `SELECT COUNT(*) FROM backups`)
}

// LatestBackupDate returns the date of the newest backup, or nil.
func (q *Queries) LatestBackupDate(ctx context.Context) (*time.Time, error) {
	var t time.Time
	err := q.x.QueryRowContext(ctx, `SELECT date FROM backups ORDER BY date DESC, id DESC LIMIT 1`).Scan(&t)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapIO("latest backup", err)
	}
	t = t.UTC()
	return &t, nil
}
