// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/forward"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/supervisor"
	"github.com/tomtom215/agenda/internal/testinfra"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Path: database.MemoryPath, MaxMemory: "256MB", Threads: 1},
		Engine:   config.EngineConfig{Origin: "engine-test", SchemaVersion: database.LatestSchemaVersion, EventBuffer: 16},
		Backup: config.BackupConfig{
			AutoBackup:    false,
			IntervalHours: 24,
			InitialDelay:  time.Hour,
			KeepCount:     5,
			ExportDir:     t.TempDir(),
		},
		Forward: config.ForwardConfig{
			Mode:               "none",
			HTTP:               config.HTTPForwardConfig{Timeout: 5 * time.Second},
			RetryInterval:      time.Hour,
			MaxAttempts:        3,
			RetryRate:          10,
			BreakerMaxFailures: 5,
			BreakerTimeout:     time.Minute,
		},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 7420, ShutdownTimeout: time.Second},
	}
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	return e
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Error("New(nil) succeeded")
	}

	cfg := testConfig(t)
	cfg.Forward.Mode = "carrier-pigeon"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New with an unknown forward mode succeeded")
	}
}

func TestEngine_GatewayAndBackup(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	ctx := context.Background()

	job, err := e.Gateway().CreateJob(ctx, &models.Job{Nombre: "Jardin"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if n, _ := e.Journal().Count(ctx); n != 1 {
		t.Errorf("audit count = %d, want 1", n)
	}

	p, err := e.Backups().Generate(ctx, models.BackupManual)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.Metadata.TotalJobs != 1 {
		t.Errorf("TotalJobs = %d", p.Metadata.TotalJobs)
	}

	if _, err := e.Gateway().DeleteJob(ctx, job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	records, err := e.Backups().ListBackups(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("ListBackups = %d, %v", len(records), err)
	}
	if records[0].Forwarded {
		t.Error("backup marked forwarded with forwarding off")
	}
	if _, err := e.Backups().RestoreFromRecord(ctx, records[0].ID); err != nil {
		t.Fatalf("RestoreFromRecord: %v", err)
	}
	if _, err := e.Gateway().GetJob(ctx, job.ID); err != nil {
		t.Errorf("job not restored: %v", err)
	}
}

func TestEngine_ForwardsBackups(t *testing.T) {
	remote := testinfra.NewCaptureServer(t)
	cfg := testConfig(t)
	cfg.Forward.Mode = "http"
	cfg.Forward.HTTP.URL = remote.URL()
	cfg.Forward.SpoolPath = ""

	e := newTestEngine(t, cfg)
	ctx := context.Background()

	if _, err := e.Backups().Generate(ctx, models.BackupManual); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !remote.WaitForCaptures(1, 5*time.Second) {
		t.Fatal("remote received nothing")
	}

	var env forward.Envelope
	if err := json.Unmarshal(remote.Captures()[0].Body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Origin != "engine-test" || env.BackupID == 0 {
		t.Errorf("envelope = %+v", env)
	}

	records, err := e.Backups().ListBackups(ctx)
	if err != nil || len(records) != 1 {
		t.Fatalf("ListBackups = %d, %v", len(records), err)
	}
	if !records[0].Forwarded {
		t.Error("delivered backup not marked forwarded")
	}
}

func TestEngine_Router(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	srv := httptest.NewServer(e.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d", resp.StatusCode)
	}
}

func TestEngine_ScheduleSettingsReloadScheduler(t *testing.T) {
	e := newTestEngine(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := e.Scheduler().Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.Scheduler().Running() {
		t.Fatal("scheduler running with autoBackup off")
	}

	if _, err := e.Gateway().SetConfig(ctx, backup.KeyAutoBackup, true); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if !e.Scheduler().Running() {
		t.Fatal("autoBackup=true through the gateway did not start the scheduler")
	}

	if _, err := e.Gateway().SetConfig(ctx, backup.KeyAutoBackup, false); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if e.Scheduler().Running() {
		t.Fatal("autoBackup=false through the gateway left the scheduler running")
	}
	// a backup taken with autoBackup off turns the loop off when restored
	p, err := e.Backups().Generate(ctx, models.BackupManual)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := e.Gateway().SetConfig(ctx, backup.KeyAutoBackup, true); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if !e.Scheduler().Running() {
		t.Fatal("scheduler not running after autoBackup=true")
	}
	if _, err := e.Backups().RestorePayload(ctx, p); err != nil {
		t.Fatalf("RestorePayload: %v", err)
	}
	if e.Scheduler().Running() {
		t.Error("restored autoBackup=false did not stop the scheduler")
	}
	e.Scheduler().Stop()
}

func TestEngine_RegisterAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup.AutoBackup = true
	e := newTestEngine(t, cfg)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	e.Register(tree)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for !e.Scheduler().Running() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler not started by the tree")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("tree exited with %v", err)
	}

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
	if e.Scheduler().Running() {
		t.Error("scheduler running after shutdown")
	}
}
