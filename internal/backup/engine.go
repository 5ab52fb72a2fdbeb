// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/forward"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
)

// ErrBackupInProgress is returned when Generate is called while another
// generation is running.
var ErrBackupInProgress = errors.New("backup already in progress")

// Locker excludes gateway writes while a restore runs.
type Locker interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
}

// Dispatcher delivers a backup to the remote store and reports whether it
// arrived. Failures are the dispatcher's to handle.
type Dispatcher interface {
	Dispatch(ctx context.Context, env forward.Envelope) bool
}

// Engine generates, stores and restores backups.
type Engine struct {
	db            *database.DB
	gate          Locker
	dispatcher    Dispatcher
	defaults      Settings
	exportDir     string
	schemaVersion int
	origin        string

	inFlight atomic.Bool
	now      func() time.Time

	// OnRestored, when set, is called after a restore commits. Restored
	// config entries may carry new schedule settings.
	OnRestored func(ctx context.Context)
}

// Options configures an Engine.
type Options struct {
	Config        config.BackupConfig
	SchemaVersion int
	// Origin tags forwarded envelopes with the device descriptor.
	Origin string
	// Dispatcher is optional; without it backups stay local.
	Dispatcher Dispatcher
}

// New creates a backup engine over db. gate is usually the CRUD gateway.
func New(db *database.DB, gate Locker, opts Options) *Engine {
	version := opts.SchemaVersion
	if version <= 0 {
		version = database.LatestSchemaVersion
	}
	return &Engine{
		db:            db,
		gate:          gate,
		dispatcher:    opts.Dispatcher,
		defaults:      defaultSettings(opts.Config),
		exportDir:     opts.Config.ExportDir,
		schemaVersion: version,
		origin:        opts.Origin,
		now:           time.Now,
	}
}

// InProgress reports whether a generation is running.
func (e *Engine) InProgress() bool {
	return e.inFlight.Load()
}

// Generate takes a full backup of kind, stores it, applies retention and
// forwards it. It returns the stored payload, compressed when
// compressBackups is on.
func (e *Engine) Generate(ctx context.Context, kind models.BackupKind) (out *Payload, err error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.BackupsRejected.Inc()
		return nil, ErrBackupInProgress
	}
	defer e.inFlight.Store(false)

	start := time.Now()
	var size int64
	defer func() { metrics.RecordBackup(string(kind), time.Since(start), size, err) }()

	settings := e.Settings(ctx)
	if settings.Encrypt {
		logging.Ctx(ctx).Warn().Msg("encryptBackups is set but encryption is not implemented; backup is stored unencrypted")
	}

	payload, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Compress {
		if payload, err = payload.Compress(); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, models.WrapIO("encode backup", err)
	}
	size = int64(len(raw))

	record := &models.BackupRecord{
		Date:      payload.GeneratedAt,
		Kind:      kind,
		Payload:   raw,
		SizeBytes: size,
	}
	var evicted int
	err = e.db.WithTx(ctx, func(q *database.Queries) error {
		if err := q.InsertBackup(ctx, record); err != nil {
			return err
		}
		evicted, err = q.EvictBackups(ctx, settings.KeepCount)
		return err
	})
	if err != nil {
		return nil, err
	}
	if evicted > 0 {
		metrics.BackupsEvicted.Add(float64(evicted))
	}

	logging.Ctx(ctx).Info().
		Int64("backup_id", record.ID).
		Str("kind", string(kind)).
		Bool("compressed", payload.Compressed).
		Int64("size_bytes", size).
		Int("evicted", evicted).
		Msg("Backup generated")

	e.forward(ctx, record)
	return payload, nil
}

// snapshot reads every restorable record inside one transaction.
func (e *Engine) snapshot(ctx context.Context) (*Payload, error) {
	p := &Payload{
		SchemaVersion: e.schemaVersion,
		GeneratedAt:   e.now().UTC().Truncate(time.Microsecond),
		Data:          &Data{},
	}
	err := e.db.WithTx(ctx, func(q *database.Queries) error {
		var err error
		if p.Data.Jobs, err = q.ListJobs(ctx, models.JobFilter{}); err != nil {
			return err
		}
		if p.Data.Tasks, err = q.ListTasks(ctx, models.TaskFilter{}); err != nil {
			return err
		}
		if p.Data.Config, err = q.ListConfig(ctx); err != nil {
			return err
		}
		if p.Data.Statistics, err = q.ListStatistics(ctx, 0); err != nil {
			return err
		}
		latest, err := q.LatestAudit(ctx)
		if err != nil {
			return err
		}
		if latest != nil {
			ts := latest.Timestamp
			p.Metadata.LastAuditTimestamp = &ts
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Metadata.TotalJobs = len(p.Data.Jobs)
	p.Metadata.TotalTasks = len(p.Data.Tasks)
	p.Metadata.EstimatedSizeBytes = estimateSize(p.Data)
	return p, nil
}

// estimateSize is the serialized length of jobs plus tasks.
func estimateSize(d *Data) int64 {
	jobs, err := json.Marshal(d.Jobs)
	if err != nil {
		return 0
	}
	tasks, err := json.Marshal(d.Tasks)
	if err != nil {
		return 0
	}
	return int64(len(jobs) + len(tasks))
}

func (e *Engine) forward(ctx context.Context, record *models.BackupRecord) {
	if e.dispatcher == nil {
		return
	}
	env := forward.Envelope{
		ID:        uuid.NewString(),
		BackupID:  record.ID,
		Kind:      string(record.Kind),
		CreatedAt: record.Date,
		Origin:    e.origin,
		Payload:   record.Payload,
	}
	if e.dispatcher.Dispatch(ctx, env) {
		e.MarkForwarded(ctx, record.ID)
		record.Forwarded = true
	}
}

// MarkForwarded flags a stored backup as delivered. Generate calls it for
// immediate deliveries; the forward spool calls it for retried ones. A
// record already evicted is ignored.
func (e *Engine) MarkForwarded(ctx context.Context, id int64) {
	if err := e.db.MarkBackupForwarded(ctx, id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("backup_id", id).Msg("Failed to mark backup as forwarded")
	}
}

// ListBackups returns the retained backups, newest first, without payloads.
func (e *Engine) ListBackups(ctx context.Context) ([]*models.BackupRecord, error) {
	return e.db.ListBackups(ctx)
}

// GetBackup returns one retained backup including its payload.
func (e *Engine) GetBackup(ctx context.Context, id int64) (*models.BackupRecord, error) {
	return e.db.GetBackup(ctx, id)
}

// DeleteBackup removes a retained backup. A missing id is not an error.
func (e *Engine) DeleteBackup(ctx context.Context, id int64) (bool, error) {
	return e.db.DeleteBackup(ctx, id)
}

// RestoreFromRecord restores the retained backup with id.
func (e *Engine) RestoreFromRecord(ctx context.Context, id int64) (*RestoreResult, error) {
	record, err := e.db.GetBackup(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Restore(ctx, record.Payload)
}
