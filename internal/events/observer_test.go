// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/agenda/internal/models"
)

type stubReader struct {
	jobs  []*models.Job
	tasks []*models.Task
	err   error
}

func (r *stubReader) ListJobs(context.Context, models.JobFilter) ([]*models.Job, error) {
	return r.jobs, r.err
}

func (r *stubReader) ListTasks(context.Context, models.TaskFilter) ([]*models.Task, error) {
	return r.tasks, r.err
}

func TestObserver_CountsEvents(t *testing.T) {
	feed := NewFeed(8)
	defer feed.Close()

	reader := &stubReader{
		jobs:  []*models.Job{{ID: "j1"}},
		tasks: []*models.Task{{ID: "t1"}, {ID: "t2", Completada: true}},
	}
	obs := NewObserver(feed, reader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- obs.Serve(ctx) }()

	// Serve subscribes asynchronously; republish until the first event lands.
	deadline := time.Now().Add(2 * time.Second)
	var snap *Snapshot
	for time.Now().Before(deadline) {
		feed.Publish(ctx, ChangeEvent{Operation: models.OpCreate, Table: models.TableJobs, RecordID: "j1", At: time.Now()})
		var err error
		if snap, err = obs.Snapshot(ctx); err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if snap.Events > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap == nil || snap.Events == 0 || snap.LastEvent == nil {
		t.Fatalf("observer saw no events: %+v", snap)
	}
	if snap.Jobs != 1 || snap.Tasks != 2 || snap.PendingTasks != 1 {
		t.Errorf("snapshot = %+v", snap)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestObserver_SnapshotError(t *testing.T) {
	obs := NewObserver(NewFeed(1), &stubReader{err: errors.New("closed")})
	if _, err := obs.Snapshot(context.Background()); err == nil {
		t.Error("Snapshot error not propagated")
	}
}
