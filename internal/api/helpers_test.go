// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/audit"
	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/events"
	"github.com/tomtom215/agenda/internal/gateway"
	"github.com/tomtom215/agenda/internal/stats"
	"github.com/tomtom215/agenda/internal/testinfra"
	"github.com/tomtom215/agenda/internal/websocket"
)

type testServer struct {
	*httptest.Server
	deps Dependencies
}

// envelope mirrors APIResponse with Data left raw for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		CORSOrigins:     []string{"http://localhost:5173"},
		RateLimitReqs:   0,
		RateLimitWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()
	db := testinfra.NewDB(t)
	feed := events.NewFeed(64)
	t.Cleanup(func() { _ = feed.Close() })

	journal := audit.NewJournal(db, "api-test")
	aggregator := stats.NewAggregator(db)
	gw := gateway.New(db, journal, aggregator, feed)
	engine := backup.New(db, gw, backup.Options{
		Config: config.BackupConfig{IntervalHours: 24, KeepCount: 5, ExportDir: t.TempDir()},
		Origin: "api-test",
	})

	deps := Dependencies{
		Gateway:   gw,
		Backups:   engine,
		Scheduler: backup.NewScheduler(engine, time.Hour),
		Journal:   journal,
		Stats:     aggregator,
		Observer:  events.NewObserver(feed, gw),
		DB:        db,
		Version:   "test",
	}
	hub := websocket.NewHub(feed)
	srv := httptest.NewServer(NewRouter(cfg, NewHandler(deps), hub))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, deps: deps}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode envelope %q: %v", method, path, raw, err)
		}
	}
	return resp, env
}

func (s *testServer) mustDo(t *testing.T, method, path string, body any, wantStatus int, out any) envelope {
	t.Helper()
	resp, env := s.do(t, method, path, body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d (error %+v)", method, path, resp.StatusCode, wantStatus, env.Error)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}
