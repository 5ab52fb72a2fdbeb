// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/agenda/internal/events"
	"github.com/tomtom215/agenda/internal/models"
)

// startHub runs hub until the test ends.
func startHub(t *testing.T, hub *Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func fakeClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message within 2s")
	}
	return Message{}
}

func TestHub_BroadcastChange(t *testing.T) {
	hub := NewHub(nil)
	startHub(t, hub)

	a, b := fakeClient(hub, 4), fakeClient(hub, 4)
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	ev := events.ChangeEvent{Operation: models.OpCreate, Table: models.TableJobs, RecordID: "j1", At: time.Now()}
	hub.BroadcastChange(ev)

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeChange {
			t.Errorf("Type = %q", msg.Type)
		}
		if got, ok := msg.Data.(events.ChangeEvent); !ok || got.RecordID != "j1" {
			t.Errorf("Data = %#v", msg.Data)
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(nil)
	startHub(t, hub)

	c := fakeClient(hub, 1)
	hub.Register <- c
	waitForClients(t, hub, 1)

	hub.Unregister <- c
	waitForClients(t, hub, 0)
	if _, ok := <-c.send; ok {
		t.Error("send channel still open after unregister")
	}

	// unregistering twice is harmless
	hub.Unregister <- c
	waitForClients(t, hub, 0)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	startHub(t, hub)

	slow, fast := fakeClient(hub, 1), fakeClient(hub, 8)
	hub.Register <- slow
	hub.Register <- fast
	waitForClients(t, hub, 2)

	for i := 0; i < 3; i++ {
		hub.BroadcastChange(events.ChangeEvent{RecordID: "x"})
	}
	waitForClients(t, hub, 1)

	for i := 0; i < 3; i++ {
		receive(t, fast)
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := fakeClient(hub, 1)
	hub.Register <- c
	waitForClients(t, hub, 1)

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithContext = %v, want context.Canceled", err)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount after shutdown = %d", hub.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel open after shutdown")
	}
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		origin  string
		allowed []string
		want    bool
	}{
		{"", []string{"*"}, false},
		{"http://localhost:5173", []string{"*"}, true},
		{"http://localhost:5173", []string{"http://localhost:5173"}, true},
		{"http://evil.example", []string{"http://localhost:5173"}, false},
		{"http://localhost:5173", nil, false},
	}
	for _, tt := range tests {
		if got := originAllowed(tt.origin, tt.allowed); got != tt.want {
			t.Errorf("originAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}
