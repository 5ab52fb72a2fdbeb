// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"

	"github.com/tomtom215/agenda/internal/models"
)

// AppendStatistics writes a new snapshot. The id always comes from the
// sequence, so restored snapshots are renumbered.
func (q *Queries) AppendStatistics(ctx context.Context, s *models.StatisticsSnapshot) error {
	err := q.x.QueryRowContext(ctx, `
		INSERT INTO statistics (date, kind, active_jobs, total_jobs, pending_tasks, total_tasks,
			tasks_completed_today, estimated_revenue_today, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		s.Date, s.Kind, s.ActiveJobs, s.TotalJobs, s.PendingTasks, s.TotalTasks,
		s.TasksCompletedToday, s.EstimatedRevenueToday, s.Timestamp.UTC()).Scan(&s.ID)
	return models.WrapIO("append statistics", err)
}

// ListStatistics returns the snapshot series oldest first. limit <= 0
// returns everything.
func (q *Queries) ListStatistics(ctx context.Context, limit int) ([]*models.StatisticsSnapshot, error) {
	query := `
		SELECT id, date, kind, active_jobs, total_jobs, pending_tasks, total_tasks,
			tasks_completed_today, estimated_revenue_today, timestamp
		FROM statistics ORDER BY id`
	var args []any
	if limit > 0 {
		// newest N, still returned oldest first
		query = `SELECT * FROM (` + query + ` DESC LIMIT ?) ORDER BY id`
		args = append(args, limit)
	}

	rows, err := q.x.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.WrapIO("list statistics", err)
	}
	defer rows.Close()

	out := []*models.StatisticsSnapshot{}
	for rows.Next() {
		var s models.StatisticsSnapshot
		if err := rows.Scan(&s.ID, &s.Date, &s.Kind, &s.ActiveJobs, &s.TotalJobs, &s.PendingTasks,
			&s.TotalTasks, &s.TasksCompletedToday, &s.EstimatedRevenueToday, &s.Timestamp); err != nil {
			return nil, models.WrapIO("list statistics", err)
		}
		s.Timestamp = s.Timestamp.UTC()
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list statistics", err)
	}
	return out, nil
}

// CountStatistics returns the number of stored snapshots.
func (q *Queries) CountStatistics(ctx context.Context) (int, error) {
	return q.count(ctx, "count statistics", `SELECT COUNT(*) FROM statistics`)
}

// DeleteAllStatistics empties the snapshot series.
func (q *Queries) DeleteAllStatistics(ctx context.Context) error {
	_, err := q.x.ExecContext(ctx, `DELETE FROM statistics`)
	return models.WrapIO("clear statistics", err)
}
