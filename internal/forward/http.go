// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
)

// HTTPForwarder POSTs envelopes to a fixed URL.
type HTTPForwarder struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	closed  atomic.Bool
}

// NewHTTPForwarder creates a forwarder for cfg.HTTP.URL. The breaker opens
// after cfg.BreakerMaxFailures consecutive failures and probes again after
// cfg.BreakerTimeout.
func NewHTTPForwarder(cfg config.ForwardConfig) (*HTTPForwarder, error) {
	if cfg.HTTP.URL == "" {
		return nil, fmt.Errorf("http forward url is required")
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	f := &HTTPForwarder{
		url:    cfg.HTTP.URL,
		client: &http.Client{Timeout: cfg.HTTP.Timeout},
	}
	f.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "forward-http",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Forward circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
	return f, nil
}

// Name implements Forwarder.
func (f *HTTPForwarder) Name() string { return "http" }

// State returns the breaker state.
func (f *HTTPForwarder) State() gobreaker.State { return f.breaker.State() }

// Forward implements Forwarder. Any non-2xx response is a failure.
func (f *HTTPForwarder) Forward(ctx context.Context, env Envelope) error {
	if f.closed.Load() {
		return ErrClosed
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	_, err = f.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, f.post(ctx, env, body)
	})
	metrics.RecordForward(f.Name(), err)
	return err
}

func (f *HTTPForwarder) post(ctx context.Context, env Envelope, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", env.ID)
	req.Header.Set("X-Agenda-Backup-Id", strconv.FormatInt(env.BackupID, 10))
	if env.Checksum != "" {
		req.Header.Set("X-Agenda-Checksum", env.Checksum)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("forward request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("forward rejected: %s", resp.Status)
	}
	return nil
}

// Close implements Forwarder.
func (f *HTTPForwarder) Close() error {
	f.closed.Store(true)
	f.client.CloseIdleConnections()
	return nil
}
