// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// DefaultInitialDelay is how long after Start the first automatic backup
// runs.
const DefaultInitialDelay = 5 * time.Second

// Scheduler triggers automatic backups while autoBackup is on.
type Scheduler struct {
	engine       *Engine
	initialDelay time.Duration

	mu       sync.Mutex
	base     context.Context
	running  bool
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup

	nextRun atomic.Int64
}

// NewScheduler creates a stopped scheduler. initialDelay <= 0 uses
// DefaultInitialDelay.
func NewScheduler(engine *Engine, initialDelay time.Duration) *Scheduler {
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return &Scheduler{engine: engine, initialDelay: initialDelay}
}

// Start reads the current settings and, if autoBackup is on, schedules the
// first backup after the initial delay and then one per interval. A loop
// already running is stopped first, so Start also applies changed
// settings. The trigger loop lives until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base = ctx
	s.stopLocked()
	s.startLocked(s.engine.Settings(ctx))
	return nil
}

// Reload re-reads the settings and restarts the trigger loop when
// autoBackup or the interval changed. It does nothing before Start or
// after the Start context is done. A restarted loop waits the initial
// delay again.
func (s *Scheduler) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base == nil || s.base.Err() != nil {
		return
	}
	settings := s.engine.Settings(ctx)
	if settings.AutoBackup == s.running && (!s.running || settings.Interval == s.interval) {
		return
	}
	logging.Ctx(ctx).Info().
		Bool("auto_backup", settings.AutoBackup).
		Dur("interval", settings.Interval).
		Msg("Backup settings changed, restarting scheduler")
	s.stopLocked()
	s.startLocked(settings)
}

func (s *Scheduler) startLocked(settings Settings) {
	ctx := s.base
	if !settings.AutoBackup {
		logging.Ctx(ctx).Info().Msg("Automatic backups disabled")
		return
	}

	s.running = true
	s.interval = settings.Interval
	s.stop = make(chan struct{})
	s.nextRun.Store(time.Now().Add(s.initialDelay).UnixNano())
	s.wg.Add(1)
	go s.run(ctx, s.stop, settings.Interval)

	logging.Ctx(ctx).Info().
		Dur("initial_delay", s.initialDelay).
		Dur("interval", settings.Interval).
		Int("keep", settings.KeepCount).
		Msg("Backup scheduler started")
}

// Stop cancels future triggers. A backup already running finishes first.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.running = false
	s.interval = 0
	s.nextRun.Store(0)
}

// Running reports whether a trigger loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns when the next automatic backup is due, or the zero time
// when none is scheduled.
func (s *Scheduler) NextRun() time.Time {
	n := s.nextRun.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *Scheduler) String() string {
	return "backup-scheduler"
}

func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}, interval time.Duration) {
	defer s.wg.Done()

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-timer.C:
			s.trigger(ctx)
			s.nextRun.Store(time.Now().Add(interval).UnixNano())
			timer.Reset(interval)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	// a stop while generating must not abort the backup
	ctx = context.WithoutCancel(ctx)

	_, err := s.engine.Generate(ctx, models.BackupAuto)
	switch {
	case errors.Is(err, ErrBackupInProgress):
		logging.Ctx(ctx).Info().Msg("Skipping scheduled backup, another backup is in progress")
	case err != nil:
		logging.Ctx(ctx).Error().Err(err).Msg("Scheduled backup failed")
	}
}
