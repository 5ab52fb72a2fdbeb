// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
	"github.com/tomtom215/agenda/internal/models"
)

// Topic is the gochannel topic every change event is published on.
const Topic = "agenda.changes"

// ChangeEvent describes one committed mutation.
type ChangeEvent struct {
	Operation models.Operation `json:"operation"`
	Table     string           `json:"table"`
	RecordID  string           `json:"recordId"`
	At        time.Time        `json:"at"`
}

// Feed fans change events out to in-process subscribers.
type Feed struct {
	pubsub *gochannel.GoChannel
}

// NewFeed creates a feed whose subscriber channels buffer up to buffer
// messages.
func NewFeed(buffer int64) *Feed {
	return &Feed{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			logging.NewQuietWatermillLogger("events"),
		),
	}
}

// Publish sends ev to every current subscriber. Failures are logged and
// counted; a feed with no subscribers drops the event.
func (f *Feed) Publish(ctx context.Context, ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		f.fail(ctx, ev, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("table", ev.Table)
	msg.Metadata.Set("operation", string(ev.Operation))
	if id := logging.OperationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("operation_id", id)
	}

	if err := f.pubsub.Publish(Topic, msg); err != nil {
		f.fail(ctx, ev, err)
		return
	}
	metrics.ChangeEventsPublished.WithLabelValues(ev.Table, string(ev.Operation)).Inc()
}

func (f *Feed) fail(ctx context.Context, ev ChangeEvent, err error) {
	metrics.ChangeEventFailures.Inc()
	logging.Ctx(ctx).Warn().Err(err).
		Str("table", ev.Table).
		Str("record_id", ev.RecordID).
		Msg("Failed to publish change event")
}

// Subscribe returns a channel of decoded events that closes when ctx is
// done or the feed is closed. Each message is acked after decoding.
func (f *Feed) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	messages, err := f.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", Topic, err)
	}

	out := make(chan ChangeEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			var ev ChangeEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable change event")
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close stops the feed and closes all subscriber channels.
func (f *Feed) Close() error {
	return f.pubsub.Close()
}
