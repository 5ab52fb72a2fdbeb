// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/agenda/internal/api"
	"github.com/tomtom215/agenda/internal/audit"
	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/events"
	"github.com/tomtom215/agenda/internal/forward"
	"github.com/tomtom215/agenda/internal/gateway"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/stats"
	"github.com/tomtom215/agenda/internal/supervisor"
	"github.com/tomtom215/agenda/internal/supervisor/services"
	"github.com/tomtom215/agenda/internal/websocket"
)

// Version is reported by the health endpoint. Set with -ldflags at build
// time.
var Version = "dev"

// Engine owns every component of one running instance.
type Engine struct {
	cfg *config.Config

	db         *database.DB
	journal    *audit.Journal
	aggregator *stats.Aggregator
	feed       *events.Feed
	gateway    *gateway.Service
	dispatcher *forward.Dispatcher
	backups    *backup.Engine
	scheduler  *backup.Scheduler
	retry      *forward.RetryLoop
	observer   *events.Observer
	hub        *websocket.Hub
	router     http.Handler

	shutdownOnce sync.Once
	shutdownErr  error
}

// New opens the store and builds the component graph. On error everything
// opened so far is closed again.
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine: nil config")
	}

	db, err := database.Open(ctx, cfg.Database, cfg.Engine.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		db:         db,
		journal:    audit.NewJournal(db, cfg.Engine.Origin),
		aggregator: stats.NewAggregator(db),
		feed:       events.NewFeed(cfg.Engine.EventBuffer),
	}
	e.gateway = gateway.New(db, e.journal, e.aggregator, e.feed)

	dispatcher, err := newDispatcher(cfg.Forward)
	if err != nil {
		e.closeAll()
		return nil, err
	}
	e.dispatcher = dispatcher

	e.backups = backup.New(db, e.gateway, backup.Options{
		Config:        cfg.Backup,
		SchemaVersion: cfg.Engine.SchemaVersion,
		Origin:        cfg.Engine.Origin,
		Dispatcher:    dispatcher,
	})
	dispatcher.OnDelivered = e.backups.MarkForwarded

	e.scheduler = backup.NewScheduler(e.backups, cfg.Backup.InitialDelay)
	e.backups.OnRestored = e.scheduler.Reload
	e.gateway.OnConfigSet = func(ctx context.Context, key string) {
		if backup.ScheduleKey(key) {
			e.scheduler.Reload(ctx)
		}
	}
	if dispatcher.Enabled() {
		e.retry = forward.NewRetryLoop(dispatcher, cfg.Forward.RetryInterval, cfg.Forward.MaxAttempts, cfg.Forward.RetryRate)
	}

	e.observer = events.NewObserver(e.feed, e.gateway)
	e.hub = websocket.NewHub(e.feed)
	e.router = api.NewRouter(cfg.Server, api.NewHandler(api.Dependencies{
		Gateway:   e.gateway,
		Backups:   e.backups,
		Scheduler: e.scheduler,
		Journal:   e.journal,
		Stats:     e.aggregator,
		Observer:  e.observer,
		DB:        db,
		Version:   Version,
	}), e.hub)

	logging.Info().
		Str("db_path", db.Path()).
		Str("origin", cfg.Engine.Origin).
		Int("schema_version", cfg.Engine.SchemaVersion).
		Bool("forwarding", dispatcher.Enabled()).
		Msg("Engine initialized")
	return e, nil
}

// newDispatcher builds the forwarder and, when one is configured, its
// spool. Mode "none" yields a dispatcher that forwards nothing.
func newDispatcher(cfg config.ForwardConfig) (*forward.Dispatcher, error) {
	forwarder, err := forward.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create forwarder: %w", err)
	}
	if forwarder == nil {
		return forward.NewDispatcher(nil, nil, 0), nil
	}

	spool, err := forward.OpenSpool(cfg.SpoolPath)
	if err != nil {
		_ = forwarder.Close()
		return nil, err
	}
	return forward.NewDispatcher(forwarder, spool, cfg.HTTP.Timeout), nil
}

// Register adds the background services to tree: the scheduler and the
// retry loop to the storage layer, the observer and the hub to the events
// layer, and the HTTP server to the api layer when it is enabled.
func (e *Engine) Register(tree *supervisor.SupervisorTree) {
	tree.AddStorageService(e.scheduler)
	if e.retry != nil {
		tree.AddStorageService(e.retry)
	}

	tree.AddEventsService(services.NewNamedService("change-observer", e.observer))
	tree.AddEventsService(e.hub)

	if e.cfg.Server.Enabled {
		server := &http.Server{
			Addr:              e.cfg.Server.Address(),
			Handler:           e.router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, e.cfg.Server.ShutdownTimeout))
	}
}

// Shutdown stops the scheduler, lets an in-flight backup finish, then
// closes the feed, the forwarder and the database. It is safe to call
// more than once.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.shutdownOnce.Do(func() {
		e.scheduler.Stop()
		if e.retry != nil {
			e.retry.Stop()
		}

		if err := e.waitIdle(ctx); err != nil {
			logging.Warn().Msg("Shutdown deadline reached with a backup in flight")
			e.shutdownErr = err
		}

		if err := e.closeAll(); err != nil && e.shutdownErr == nil {
			e.shutdownErr = err
		}
		logging.Info().Msg("Engine shut down")
	})
	return e.shutdownErr
}

// waitIdle blocks until no backup is being generated or ctx is done.
func (e *Engine) waitIdle(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for e.backups.InProgress() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// closeAll closes the opened resources in reverse order of New.
func (e *Engine) closeAll() error {
	var errs []error
	if e.dispatcher != nil {
		if err := e.dispatcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close forwarder: %w", err))
		}
	}
	if e.feed != nil {
		if err := e.feed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close change feed: %w", err))
		}
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Gateway returns the CRUD gateway.
func (e *Engine) Gateway() gateway.Gateway { return e.gateway }

// Backups returns the backup engine.
func (e *Engine) Backups() *backup.Engine { return e.backups }

// Scheduler returns the automatic backup scheduler.
func (e *Engine) Scheduler() *backup.Scheduler { return e.scheduler }

// Journal returns the audit journal.
func (e *Engine) Journal() *audit.Journal { return e.journal }

// Stats returns the statistics aggregator.
func (e *Engine) Stats() *stats.Aggregator { return e.aggregator }

// Feed returns the change feed.
func (e *Engine) Feed() *events.Feed { return e.feed }

// Router returns the HTTP handler for the local API.
func (e *Engine) Router() http.Handler { return e.router }

// DB returns the underlying store.
func (e *Engine) DB() *database.DB { return e.db }
