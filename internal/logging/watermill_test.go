// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { Init(DefaultConfig()) })

	wl := NewWatermillLogger("feed").With(watermill.LogFields{"topic": "changes"})
	wl.Error("publish failed", errors.New("closed"), watermill.LogFields{"uuid": "m-1"})

	out := buf.String()
	for _, want := range []string{`"component":"feed"`, `"topic":"changes"`, `"uuid":"m-1"`, `"error":"closed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}

	buf.Reset()
	wl.Trace("noise", nil)
	if buf.Len() != 0 {
		t.Errorf("trace should be filtered at debug level, got %s", buf.String())
	}
}

func TestQuietWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() { Init(DefaultConfig()) })

	quiet := NewQuietWatermillLogger("events").With(watermill.LogFields{"topic": "changes"})
	quiet.Info("No subscribers to send message", nil)
	if buf.Len() != 0 {
		t.Errorf("info should be demoted below the info level, got %s", buf.String())
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	quiet.Info("No subscribers to send message", nil)
	if out := buf.String(); !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, `"topic":"changes"`) {
		t.Errorf("expected a debug line with fields, got %s", out)
	}

	buf.Reset()
	NewWatermillLogger("forward-nats").Info("connected", nil)
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Errorf("default adapter should keep info, got %s", buf.String())
	}
}
