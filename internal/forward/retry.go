// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/agenda/internal/logging"
)

// RetryLoop periodically drains the spool through the dispatcher's
// forwarder.
type RetryLoop struct {
	dispatcher  *Dispatcher
	interval    time.Duration
	maxAttempts int
	limiter     *rate.Limiter

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRetryLoop creates a loop that wakes every interval, forwards at most
// perSecond envelopes per second, and drops an envelope after maxAttempts
// failures.
func NewRetryLoop(d *Dispatcher, interval time.Duration, maxAttempts int, perSecond float64) *RetryLoop {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return &RetryLoop{
		dispatcher:  d,
		interval:    interval,
		maxAttempts: maxAttempts,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Start launches the loop. It is a no-op when already running.
func (r *RetryLoop) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	go r.run(loopCtx, r.done)

	logging.Info().
		Dur("interval", r.interval).
		Int("max_attempts", r.maxAttempts).
		Msg("Forward retry loop started")
}

// Stop cancels the loop and waits for it to exit.
func (r *RetryLoop) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.cancel()
	done := r.done
	r.running = false
	r.mu.Unlock()

	<-done
	logging.Info().Msg("Forward retry loop stopped")
}

// IsRunning reports whether the loop is active.
func (r *RetryLoop) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Serve runs the loop until ctx is done. It implements suture.Service.
func (r *RetryLoop) Serve(ctx context.Context) error {
	r.Start(ctx)
	<-ctx.Done()
	r.Stop()
	return ctx.Err()
}

func (r *RetryLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Drain(ctx)
		}
	}
}

// Drain makes one pass over the spool and returns how many envelopes were
// delivered.
func (r *RetryLoop) Drain(ctx context.Context) int {
	d := r.dispatcher
	if !d.Enabled() || d.spool == nil {
		return 0
	}

	entries, err := d.spool.Pending(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Forward retry: failed to read spool")
		return 0
	}

	delivered, failed, dropped := 0, 0, 0
	for _, e := range entries {
		if err := r.limiter.Wait(ctx); err != nil {
			break
		}
		switch r.retry(ctx, e) {
		case retryDelivered:
			delivered++
		case retryFailed:
			failed++
		case retryDropped:
			dropped++
		}
	}

	if n, err := d.spool.Compact(ctx); err != nil {
		logging.Warn().Err(err).Msg("Forward retry: spool compaction failed")
	} else if n > 0 {
		logging.Debug().Int("removed", n).Msg("Forward retry: spool compacted")
	}

	if delivered+failed+dropped > 0 {
		logging.Info().
			Int("delivered", delivered).
			Int("failed", failed).
			Int("dropped", dropped).
			Msg("Forward retry pass complete")
	}
	return delivered
}

type retryResult int

const (
	retryDelivered retryResult = iota
	retryFailed
	retryDropped
)

func (r *RetryLoop) retry(ctx context.Context, e *SpoolEntry) retryResult {
	d := r.dispatcher
	id := e.Envelope.ID

	if e.Attempts >= r.maxAttempts {
		if err := d.spool.Drop(ctx, id); err != nil {
			logging.Error().Err(err).Str("entry_id", id).Msg("Forward retry: failed to drop entry")
		}
		logging.Warn().
			Str("entry_id", id).
			Int64("backup_id", e.Envelope.BackupID).
			Int("attempts", e.Attempts).
			Msg("Forward retry: giving up on entry")
		return retryDropped
	}

	fwdCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := d.forwarder.Forward(fwdCtx, e.Envelope)
	cancel()
	if err != nil {
		if _, attemptErr := d.spool.Attempt(ctx, id, err); attemptErr != nil {
			logging.Error().Err(attemptErr).Str("entry_id", id).Msg("Forward retry: failed to record attempt")
		}
		return retryFailed
	}

	if err := d.spool.Confirm(ctx, id); err != nil {
		logging.Error().Err(err).Str("entry_id", id).Msg("Forward retry: failed to confirm entry")
	}
	d.delivered(ctx, e.Envelope)
	return retryDelivered
}
