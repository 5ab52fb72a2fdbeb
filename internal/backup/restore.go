// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
)

// RestoreResult summarizes a completed restore.
type RestoreResult struct {
	Jobs          int           `json:"jobs"`
	Tasks         int           `json:"tasks"`
	Config        int           `json:"config"`
	Statistics    int           `json:"statistics"`
	Compressed    bool          `json:"compressed"`
	SchemaVersion int           `json:"schemaVersion"`
	Duration      time.Duration `json:"duration"`
}

// Restore replaces jobs, tasks, config entries and statistics with the
// contents of raw. The audit log is left alone. Either everything is
// replaced or nothing is.
func (e *Engine) Restore(ctx context.Context, raw []byte) (*RestoreResult, error) {
	payload, err := Decode(raw)
	if err != nil {
		metrics.RecordRestore(err)
		return nil, err
	}
	return e.RestorePayload(ctx, payload)
}

// RestorePayload restores an already decoded payload. A compressed payload
// is inflated first.
func (e *Engine) RestorePayload(ctx context.Context, p *Payload) (result *RestoreResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordRestore(err) }()

	if p == nil {
		return nil, &models.ValidationError{Reason: "backup is empty"}
	}
	if p.Compressed {
		var raw []byte
		if raw, err = json.Marshal(p); err != nil {
			return nil, &models.CompressionError{Op: "encode payload", Err: err}
		}
		if p, err = Decode(raw); err != nil {
			return nil, err
		}
	}
	if err = e.check(p); err != nil {
		return nil, err
	}

	err = e.gate.Exclusive(ctx, func(ctx context.Context) error {
		return e.db.WithTx(ctx, func(q *database.Queries) error {
			return replaceAll(ctx, q, p.Data)
		})
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Restore failed, nothing was changed")
		return nil, err
	}

	result = &RestoreResult{
		Jobs:          len(p.Data.Jobs),
		Tasks:         len(p.Data.Tasks),
		Config:        len(p.Data.Config),
		Statistics:    len(p.Data.Statistics),
		Compressed:    p.inflated,
		SchemaVersion: p.SchemaVersion,
		Duration:      time.Since(start),
	}
	logging.Ctx(ctx).Info().
		Int("jobs", result.Jobs).
		Int("tasks", result.Tasks).
		Int("config", result.Config).
		Int("statistics", result.Statistics).
		Bool("compressed", result.Compressed).
		Dur("duration", result.Duration).
		Msg("Backup restored")
	if e.OnRestored != nil {
		e.OnRestored(ctx)
	}
	return result, nil
}

// check validates the payload records against each other before anything
// is deleted.
func (e *Engine) check(p *Payload) error {
	if p.Data == nil {
		return &models.ValidationError{Reason: "backup has no data"}
	}
	if p.SchemaVersion > e.schemaVersion {
		return &models.ValidationError{Reason: fmt.Sprintf(
			"backup schema version %d is newer than supported version %d", p.SchemaVersion, e.schemaVersion)}
	}

	jobs := make(map[string]struct{}, len(p.Data.Jobs))
	for i, j := range p.Data.Jobs {
		switch {
		case j == nil || j.ID == "":
			return &models.ValidationError{Reason: fmt.Sprintf("backup job at index %d has no id", i)}
		case hasKey(jobs, j.ID):
			return &models.ValidationError{Reason: fmt.Sprintf("backup contains job %q twice", j.ID)}
		}
		jobs[j.ID] = struct{}{}
	}

	tasks := make(map[string]struct{}, len(p.Data.Tasks))
	for i, t := range p.Data.Tasks {
		switch {
		case t == nil || t.ID == "":
			return &models.ValidationError{Reason: fmt.Sprintf("backup task at index %d has no id", i)}
		case hasKey(tasks, t.ID):
			return &models.ValidationError{Reason: fmt.Sprintf("backup contains task %q twice", t.ID)}
		case !hasKey(jobs, t.TrabajoID):
			return &models.ValidationError{Reason: fmt.Sprintf(
				"backup task %q references job %q which is not in the backup", t.ID, t.TrabajoID)}
		}
		tasks[t.ID] = struct{}{}
	}

	keys := make(map[string]struct{}, len(p.Data.Config))
	for i, c := range p.Data.Config {
		switch {
		case c == nil || c.Key == "":
			return &models.ValidationError{Reason: fmt.Sprintf("backup config entry at index %d has no key", i)}
		case hasKey(keys, c.Key):
			return &models.ValidationError{Reason: fmt.Sprintf("backup contains config key %q twice", c.Key)}
		}
		keys[c.Key] = struct{}{}
	}

	for i, s := range p.Data.Statistics {
		if s == nil {
			return &models.ValidationError{Reason: fmt.Sprintf("backup statistics entry at index %d is null", i)}
		}
	}
	return nil
}

func hasKey(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

// replaceAll runs inside the restore transaction. Tasks go before jobs on
// delete and after them on insert.
func replaceAll(ctx context.Context, q *database.Queries, d *Data) error {
	if err := q.DeleteAllTasks(ctx); err != nil {
		return err
	}
	if err := q.DeleteAllJobs(ctx); err != nil {
		return err
	}
	if err := q.DeleteAllConfig(ctx); err != nil {
		return err
	}
	if err := q.DeleteAllStatistics(ctx); err != nil {
		return err
	}

	for _, j := range d.Jobs {
		if err := q.InsertJob(ctx, j); err != nil {
			return err
		}
	}
	for _, t := range d.Tasks {
		if err := q.InsertTask(ctx, t); err != nil {
			return err
		}
	}
	for _, c := range d.Config {
		if err := q.UpsertConfig(ctx, c); err != nil {
			return err
		}
	}
	for _, s := range d.Statistics {
		snapshot := *s
		if err := q.AppendStatistics(ctx, &snapshot); err != nil {
			return err
		}
	}
	return nil
}
