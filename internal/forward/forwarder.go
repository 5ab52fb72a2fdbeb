// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/config"
)

// ErrClosed is returned by a forwarder or spool used after Close.
var ErrClosed = errors.New("forward: closed")

// Envelope is the unit sent to the remote store.
type Envelope struct {
	// ID is unique per envelope and doubles as an idempotency key.
	ID        string          `json:"id"`
	BackupID  int64           `json:"backupId"`
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"createdAt"`
	Origin    string          `json:"origin,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	// Checksum is the blake2b-256 digest of Payload, set by the dispatcher.
	Checksum string `json:"checksum,omitempty"`
}

// Forwarder delivers envelopes to one remote destination.
type Forwarder interface {
	Forward(ctx context.Context, env Envelope) error
	Name() string
	Close() error
}

// New builds the forwarder selected by cfg.Mode. Mode "none" returns nil.
func New(cfg config.ForwardConfig) (Forwarder, error) {
	switch cfg.Mode {
	case "", "none":
		return nil, nil
	case "http":
		return NewHTTPForwarder(cfg)
	case "nats":
		return NewNATSForwarder(cfg)
	default:
		return nil, fmt.Errorf("unknown forward mode %q", cfg.Mode)
	}
}
