// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/agenda/internal/audit"
	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/events"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/stats"
	"github.com/tomtom215/agenda/internal/validation"
)

// Gateway is the full CRUD surface offered to the UI and the HTTP API.
type Gateway interface {
	CreateJob(ctx context.Context, job *models.Job) (*models.Job, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	UpdateJob(ctx context.Context, id string, patch models.JobPatch) (*models.Job, error)
	DeleteJob(ctx context.Context, id string) (bool, error)

	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (bool, error)

	TasksForDay(ctx context.Context, date string) ([]*models.Task, error)
	PendingTasks(ctx context.Context) ([]*models.Task, error)
	CompletedTasks(ctx context.Context) ([]*models.Task, error)
	TasksByJob(ctx context.Context, jobID string, filter models.TaskFilter) ([]*models.Task, error)
	SetTaskStatus(ctx context.Context, id string, estado models.TaskEstado) (*models.Task, error)
	TaskCost(ctx context.Context, id string) (float64, error)

	GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error)
	SetConfig(ctx context.Context, key string, value any) (*models.ConfigEntry, error)
	ListConfig(ctx context.Context) ([]*models.ConfigEntry, error)

	// Exclusive runs fn while no gateway write is in flight and blocks new
	// writes until fn returns.
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements Gateway over DuckDB.
type Service struct {
	db      *database.DB
	journal *audit.Journal
	stats   *stats.Aggregator
	feed    *events.Feed

	gate sync.RWMutex

	// OnConfigSet, when set, is called with the key of every stored config
	// entry once the write gate is released.
	OnConfigSet func(ctx context.Context, key string)

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

var _ Gateway = (*Service)(nil)

// New builds the gateway. feed may be nil.
func New(db *database.DB, journal *audit.Journal, aggregator *stats.Aggregator, feed *events.Feed) *Service {
	return &Service{
		db:      db,
		journal: journal,
		stats:   aggregator,
		feed:    feed,
		now:     time.Now,
		newID:   uuid.NewV7,
	}
}

// Exclusive implements Gateway.
func (s *Service) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	s.gate.Lock()
	defer s.gate.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// write holds the shared side of the gate for one mutation.
func (s *Service) write() func() {
	s.gate.RLock()
	return s.gate.RUnlock
}

// timestamp is the stored form of now: UTC at microsecond precision, which
// is what DuckDB TIMESTAMP round-trips.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) generateID() (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", models.WrapIO("generate record id", err)
	}
	return id.String(), nil
}

// committed runs the best-effort tail of a mutation.
func (s *Service) committed(ctx context.Context, changes ...change) {
	for _, c := range changes {
		s.journal.Append(ctx, c.op, c.table, c.id, c.oldValue, c.newValue)
	}
	s.stats.Recompute(ctx)
	if s.feed == nil {
		return
	}
	at := s.timestamp()
	for _, c := range changes {
		s.feed.Publish(ctx, events.ChangeEvent{Operation: c.op, Table: c.table, RecordID: c.id, At: at})
	}
}

// change is one audited record mutation.
type change struct {
	op       models.Operation
	table    string
	id       string
	oldValue any
	newValue any
}

func observe(op, table string, start time.Time, err *error) {
	metrics.RecordGatewayOperation(op, table, time.Since(start), *err)
}

func validate(what string, v any) error {
	if err := validation.Struct(v); err != nil {
		return &models.ValidationError{Reason: "invalid " + what, Err: err}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
