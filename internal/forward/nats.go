// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
)

// DefaultNATSSubject is used when no subject is configured.
const DefaultNATSSubject = "agenda.backups"

// NATSForwarder publishes envelopes on a core NATS subject.
type NATSForwarder struct {
	publisher message.Publisher
	subject   string

	mu     sync.RWMutex
	closed bool
}

// NewNATSForwarder connects to cfg.NATS.URL. The connection retries in the
// background, so an unreachable server surfaces as Forward errors rather
// than a constructor failure.
func NewNATSForwarder(cfg config.ForwardConfig) (*NATSForwarder, error) {
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("nats forward url is required")
	}
	subject := cfg.NATS.Subject
	if subject == "" {
		subject = DefaultNATSSubject
	}

	logger := logging.NewWatermillLogger("forward-nats")
	natsOpts := []natsgo.Option{
		natsgo.Name("agenda-forwarder"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATS.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}
	return &NATSForwarder{publisher: pub, subject: subject}, nil
}

// Name implements Forwarder.
func (f *NATSForwarder) Name() string { return "nats" }

// Subject returns the subject envelopes are published on.
func (f *NATSForwarder) Subject() string { return f.subject }

// Forward implements Forwarder.
func (f *NATSForwarder) Forward(ctx context.Context, env Envelope) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrClosed
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := message.NewMessage(env.ID, body)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, env.ID)
	msg.Metadata.Set("backup_id", strconv.FormatInt(env.BackupID, 10))
	msg.Metadata.Set("kind", env.Kind)
	if env.Checksum != "" {
		msg.Metadata.Set("checksum", env.Checksum)
	}

	err = f.publisher.Publish(f.subject, msg)
	metrics.RecordForward(f.Name(), err)
	return err
}

// Close implements Forwarder.
func (f *NATSForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.publisher.Close()
}
