// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/agenda/internal/logging"
)

// Dispatcher sends envelopes through a forwarder and spools the ones that
// fail.
type Dispatcher struct {
	forwarder Forwarder
	spool     *Spool
	timeout   time.Duration

	// OnDelivered, when set, is called with the backup id of every
	// spooled envelope that later reaches the remote. Immediate deliveries
	// are reported by Dispatch's return value only.
	OnDelivered func(ctx context.Context, backupID int64)
}

// NewDispatcher creates a dispatcher. spool may be nil, in which case
// failed envelopes are only logged.
func NewDispatcher(forwarder Forwarder, spool *Spool, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{forwarder: forwarder, spool: spool, timeout: timeout}
}

// Enabled reports whether a forwarder is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.forwarder != nil
}

// Dispatch tries to deliver env once and reports whether it arrived. It
// never returns an error: a failure is logged and the envelope spooled.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) bool {
	if !d.Enabled() {
		return false
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	if env.Checksum == "" {
		env.Checksum = Checksum(env.Payload)
	}

	fwdCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := d.forwarder.Forward(fwdCtx, env)
	cancel()
	if err == nil {
		d.logDelivered(ctx, env)
		return true
	}

	log := logging.Ctx(ctx).Warn().Err(err).
		Str("forwarder", d.forwarder.Name()).
		Int64("backup_id", env.BackupID)
	if d.spool == nil {
		log.Msg("Backup forward failed")
		return false
	}
	if spoolErr := d.spool.Enqueue(ctx, env); spoolErr != nil {
		log.AnErr("spool_error", spoolErr).Msg("Backup forward failed and could not be spooled")
		return false
	}
	log.Msg("Backup forward failed, spooled for retry")
	return false
}

func (d *Dispatcher) logDelivered(ctx context.Context, env Envelope) {
	logging.Ctx(ctx).Info().
		Str("forwarder", d.forwarder.Name()).
		Int64("backup_id", env.BackupID).
		Msg("Backup forwarded")
}

func (d *Dispatcher) delivered(ctx context.Context, env Envelope) {
	d.logDelivered(ctx, env)
	if d.OnDelivered != nil {
		d.OnDelivered(ctx, env.BackupID)
	}
}

// Close closes the forwarder and the spool.
func (d *Dispatcher) Close() error {
	var firstErr error
	if d.forwarder != nil {
		firstErr = d.forwarder.Close()
	}
	if d.spool != nil {
		if err := d.spool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
