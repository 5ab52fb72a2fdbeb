// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// Reader is the read side of the gateway the observer inspects.
type Reader interface {
	ListJobs(ctx context.Context, filter models.JobFilter) ([]*models.Job, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
}

// Snapshot is a point-in-time summary of the store for debugging.
type Snapshot struct {
	Jobs         int        `json:"jobs"`
	Tasks        int        `json:"tasks"`
	PendingTasks int        `json:"pendingTasks"`
	Events       int64      `json:"events"`
	LastEvent    *time.Time `json:"lastEvent,omitempty"`
	TakenAt      time.Time  `json:"takenAt"`
}

// Observer logs every change event and can summarize the store on demand.
type Observer struct {
	feed   *Feed
	reader Reader
	logger zerolog.Logger

	mu        sync.Mutex
	events    int64
	lastEvent time.Time
}

// NewObserver creates an observer over feed, reading through reader.
func NewObserver(feed *Feed, reader Reader) *Observer {
	return &Observer{
		feed:   feed,
		reader: reader,
		logger: logging.WithComponent("observer"),
	}
}

// Serve logs events until ctx is done. It implements suture.Service.
func (o *Observer) Serve(ctx context.Context) error {
	events, err := o.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			o.record(ev)
		}
	}
}

func (o *Observer) record(ev ChangeEvent) {
	o.mu.Lock()
	o.events++
	o.lastEvent = ev.At
	o.mu.Unlock()

	o.logger.Debug().
		Str("operation", string(ev.Operation)).
		Str("table", ev.Table).
		Str("record_id", ev.RecordID).
		Time("at", ev.At).
		Msg("Change committed")
}

// Snapshot reads the current store through the gateway.
func (o *Observer) Snapshot(ctx context.Context) (*Snapshot, error) {
	jobs, err := o.reader.ListJobs(ctx, models.JobFilter{})
	if err != nil {
		return nil, err
	}
	tasks, err := o.reader.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		return nil, err
	}

	s := &Snapshot{Jobs: len(jobs), Tasks: len(tasks), TakenAt: time.Now()}
	o.mu.Lock()
	s.Events = o.events
	if o.events > 0 {
		last := o.lastEvent
		s.LastEvent = &last
	}
	o.mu.Unlock()
	for _, t := range tasks {
		if !t.Completada {
			s.PendingTasks++
		}
	}
	return s, nil
}
