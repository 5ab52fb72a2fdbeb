// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
)

// DateLayout is the format of snapshot dates and planned task dates.
const DateLayout = "2006-01-02"

// Aggregator computes and records statistics snapshots.
type Aggregator struct {
	db  *database.DB
	now func() time.Time
}

// NewAggregator returns an aggregator over db. "Today" is the local date.
func NewAggregator(db *database.DB) *Aggregator {
	return &Aggregator{db: db, now: time.Now}
}

// Compute builds a snapshot of the current data without storing it.
func (a *Aggregator) Compute(ctx context.Context) (*models.StatisticsSnapshot, error) {
	now := a.now()
	today := now.Format(DateLayout)

	s := &models.StatisticsSnapshot{
		Date:      today,
		Kind:      models.StatisticsKindDaily,
		Timestamp: now.UTC().Truncate(time.Microsecond),
	}

	var err error
	if s.TotalJobs, err = a.db.CountJobs(ctx); err != nil {
		return nil, err
	}
	if s.ActiveJobs, err = a.db.CountActiveJobs(ctx); err != nil {
		return nil, err
	}
	if s.TotalTasks, err = a.db.CountTasks(ctx); err != nil {
		return nil, err
	}
	if s.PendingTasks, err = a.db.CountPendingTasks(ctx); err != nil {
		return nil, err
	}
	day, err := a.db.SummarizeDay(ctx, today)
	if err != nil {
		return nil, err
	}
	s.TasksCompletedToday = day.Completed
	s.EstimatedRevenueToday = day.Revenue
	return s, nil
}

// Recompute computes a snapshot and appends it. Errors are logged and
// swallowed; the returned snapshot is nil on failure.
func (a *Aggregator) Recompute(ctx context.Context) *models.StatisticsSnapshot {
	s, err := a.Compute(ctx)
	if err == nil {
		err = a.db.AppendStatistics(ctx, s)
	}
	if err != nil {
		metrics.StatisticsFailures.Inc()
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to record statistics snapshot")
		return nil
	}
	metrics.StatisticsSnapshots.Inc()
	return s
}

// History returns the last limit snapshots, oldest first. limit <= 0
// returns the whole series.
func (a *Aggregator) History(ctx context.Context, limit int) ([]*models.StatisticsSnapshot, error) {
	return a.db.ListStatistics(ctx, limit)
}

// DatabaseStats summarizes the whole store for inspection.
func (a *Aggregator) DatabaseStats(ctx context.Context) (*models.DatabaseStats, error) {
	var (
		out models.DatabaseStats
		err error
	)

	if out.Jobs.Total, err = a.db.CountJobs(ctx); err != nil {
		return nil, err
	}
	if out.Jobs.ByEstado, err = a.db.CountJobsByEstado(ctx); err != nil {
		return nil, err
	}
	if out.Tasks.Total, err = a.db.CountTasks(ctx); err != nil {
		return nil, err
	}
	if out.Tasks.ByEstado, err = a.db.CountTasksByEstado(ctx); err != nil {
		return nil, err
	}
	if out.Tasks.ByPrioridad, err = a.db.CountTasksByPrioridad(ctx); err != nil {
		return nil, err
	}

	if out.Audit.Total, err = a.db.CountAudit(ctx); err != nil {
		return nil, err
	}
	latest, err := a.db.LatestAudit(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		ts := latest.Timestamp
		out.Audit.Latest = &ts
	}

	if out.EstimatedSizeBytes, err = a.db.RecordsSize(ctx); err != nil {
		return nil, err
	}
	out.EstimatedSize = FormatSize(out.EstimatedSizeBytes)

	if out.Backups.Local, err = a.db.CountBackups(ctx); err != nil {
		return nil, err
	}
	if out.Backups.Latest, err = a.db.LatestBackupDate(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// FormatSize renders a byte count as B, KB or MB with two decimals above
// one kilobyte.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	}
}
