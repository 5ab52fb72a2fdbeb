// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/testinfra"
)

type failingStore struct {
	Store
}

func (failingStore) AppendAudit(context.Context, *models.AuditEntry) error {
	return errors.New("disk full")
}

func TestJournal_AppendSnapshots(t *testing.T) {
	db := testinfra.NewDB(t)
	ctx := context.Background()
	j := NewJournal(db, "unit-test")

	job := &models.Job{ID: "j1", Nombre: "Jardin"}
	j.Append(ctx, models.OpCreate, models.TableJobs, job.ID, nil, job)

	updated := *job
	updated.Nombre = "Jardin 2"
	j.Append(ctx, models.OpUpdate, models.TableJobs, job.ID, job, &updated)
	j.Append(ctx, models.OpDelete, models.TableJobs, job.ID, &updated, nil)

	entries, err := j.QueryByTimeRange(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("QueryByTimeRange: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	ops := []models.Operation{models.OpCreate, models.OpUpdate, models.OpDelete}
	for i, e := range entries {
		if e.Operation != ops[i] {
			t.Errorf("entries[%d].Operation = %s, want %s", i, e.Operation, ops[i])
		}
		if e.Origin != "unit-test" || e.Table != models.TableJobs || e.RecordID != "j1" {
			t.Errorf("entries[%d] = %+v", i, e)
		}
	}
	if entries[0].OldValue != nil || entries[2].NewValue != nil {
		t.Error("CREATE old or DELETE new snapshot is not null")
	}

	var after models.Job
	if err := json.Unmarshal(entries[1].NewValue, &after); err != nil {
		t.Fatalf("decode new snapshot: %v", err)
	}
	if after.Nombre != "Jardin 2" {
		t.Errorf("UPDATE new snapshot nombre = %q", after.Nombre)
	}

	latest, err := j.Latest(ctx)
	if err != nil || latest.Operation != models.OpDelete {
		t.Errorf("Latest = %+v, %v", latest, err)
	}
	if n, _ := j.Count(ctx); n != 3 {
		t.Errorf("Count = %d", n)
	}
}

func TestJournal_TimeRange(t *testing.T) {
	db := testinfra.NewDB(t)
	ctx := context.Background()
	j := NewJournal(db, "unit-test")

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return clock }
	for i := 0; i < 4; i++ {
		j.Append(ctx, models.OpCreate, models.TableTasks, "t", nil, map[string]int{"i": i})
		clock = clock.Add(time.Hour)
	}

	got, err := j.QueryByTimeRange(ctx, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("QueryByTimeRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (09:00 and 10:00)", len(got))
	}
	if got[0].Timestamp.Hour() != 9 || got[1].Timestamp.Hour() != 10 {
		t.Errorf("hours = %d, %d", got[0].Timestamp.Hour(), got[1].Timestamp.Hour())
	}
}

func TestJournal_AppendFailureIsSwallowed(t *testing.T) {
	j := NewJournal(failingStore{}, "unit-test")
	before := testutil.ToFloat64(metrics.AuditFailures)

	j.Append(context.Background(), models.OpCreate, models.TableJobs, "x", nil, map[string]string{"id": "x"})

	if got := testutil.ToFloat64(metrics.AuditFailures); got != before+1 {
		t.Errorf("AuditFailures = %v, want %v", got, before+1)
	}
}

func TestJournal_UnencodableSnapshot(t *testing.T) {
	db := testinfra.NewDB(t)
	j := NewJournal(db, "unit-test")

	j.Append(context.Background(), models.OpCreate, models.TableJobs, "x", nil, make(chan int))

	if n, _ := j.Count(context.Background()); n != 0 {
		t.Errorf("Count = %d, want 0 for an unencodable snapshot", n)
	}
}
