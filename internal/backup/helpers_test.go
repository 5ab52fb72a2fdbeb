// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/forward"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/testinfra"
)

type exclusiveLock struct {
	mu    sync.Mutex
	calls int
}

func (l *exclusiveLock) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

type recordingDispatcher struct {
	mu      sync.Mutex
	deliver bool
	sent    []forward.Envelope
}

func (d *recordingDispatcher) Dispatch(_ context.Context, env forward.Envelope) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, env)
	return d.deliver
}

func testBackupConfig() config.BackupConfig {
	return config.BackupConfig{IntervalHours: 24, KeepCount: 5}
}

func newTestEngine(t *testing.T, cfg config.BackupConfig) (*Engine, *database.DB) {
	t.Helper()
	db := testinfra.NewDB(t)
	return New(db, &exclusiveLock{}, Options{Config: cfg, Origin: "unit-test"}), db
}

// seedRecords inserts jobs jobs with tasksPerJob tasks each, one config
// entry and one statistics snapshot.
func seedRecords(t *testing.T, db *database.DB, jobs, tasksPerJob int) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < jobs; i++ {
		j := &models.Job{
			ID:                 fmt.Sprintf("job-%d", i),
			Nombre:             fmt.Sprintf("Trabajo %d", i),
			Cliente:            "Ana",
			Costo:              models.JobCosto{ValorHora: 1000},
			FechaCreacion:      now,
			FechaActualizacion: now,
		}
		j.ApplyDefaults()
		if err := db.InsertJob(ctx, j); err != nil {
			t.Fatalf("InsertJob: %v", err)
		}
		for k := 0; k < tasksPerJob; k++ {
			task := &models.Task{
				ID:                 fmt.Sprintf("task-%d-%d", i, k),
				TrabajoID:          j.ID,
				Titulo:             fmt.Sprintf("Tarea %d", k),
				Planificacion:      models.Planificacion{FechaPlanificada: "2026-05-01"},
				FechaCreacion:      now,
				FechaActualizacion: now,
			}
			task.ApplyDefaults()
			if err := db.InsertTask(ctx, task); err != nil {
				t.Fatalf("InsertTask: %v", err)
			}
		}
	}

	if err := db.UpsertConfig(ctx, &models.ConfigEntry{Key: "theme", Value: json.RawMessage(`"dark"`)}); err != nil {
		t.Fatalf("UpsertConfig: %v", err)
	}
	if err := db.AppendStatistics(ctx, &models.StatisticsSnapshot{
		Date: "2026-05-01", Kind: models.StatisticsKindDaily, TotalJobs: jobs, Timestamp: now,
	}); err != nil {
		t.Fatalf("AppendStatistics: %v", err)
	}
}

func setConfig(t *testing.T, db *database.DB, key, value string) {
	t.Helper()
	if err := db.UpsertConfig(context.Background(), &models.ConfigEntry{Key: key, Value: json.RawMessage(value)}); err != nil {
		t.Fatalf("UpsertConfig(%s): %v", key, err)
	}
}

// state is a comparable dump of every restorable table keyed by id.
type state struct {
	jobs   map[string]string
	tasks  map[string]string
	config map[string]string
	stats  []string
}

func dumpState(t *testing.T, db *database.DB) state {
	t.Helper()
	ctx := context.Background()
	s := state{jobs: map[string]string{}, tasks: map[string]string{}, config: map[string]string{}}

	jobs, err := db.ListJobs(ctx, models.JobFilter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	for _, j := range jobs {
		s.jobs[j.ID] = mustJSON(t, j)
	}
	tasks, err := db.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	for _, task := range tasks {
		s.tasks[task.ID] = mustJSON(t, task)
	}
	entries, err := db.ListConfig(ctx)
	if err != nil {
		t.Fatalf("ListConfig: %v", err)
	}
	for _, e := range entries {
		s.config[e.Key] = string(e.Value)
	}
	stats, err := db.ListStatistics(ctx, 0)
	if err != nil {
		t.Fatalf("ListStatistics: %v", err)
	}
	for _, snap := range stats {
		// ids are renumbered on restore
		c := *snap
		c.ID = 0
		s.stats = append(s.stats, mustJSON(t, c))
	}
	sort.Strings(s.stats)
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func assertSameState(t *testing.T, got, want state) {
	t.Helper()
	compare := func(name string, g, w map[string]string) {
		if len(g) != len(w) {
			t.Errorf("%s: got %d records, want %d", name, len(g), len(w))
		}
		for id, wv := range w {
			if gv, ok := g[id]; !ok {
				t.Errorf("%s: %s missing", name, id)
			} else if gv != wv {
				t.Errorf("%s: %s = %s\nwant %s", name, id, gv, wv)
			}
		}
	}
	compare("jobs", got.jobs, want.jobs)
	compare("tasks", got.tasks, want.tasks)
	compare("config", got.config, want.config)
	if len(got.stats) != len(want.stats) {
		t.Fatalf("statistics: got %d, want %d", len(got.stats), len(want.stats))
	}
	for i := range want.stats {
		if got.stats[i] != want.stats[i] {
			t.Errorf("statistics[%d] = %s\nwant %s", i, got.stats[i], want.stats[i])
		}
	}
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	return testinfra.NewDB(t)
}
