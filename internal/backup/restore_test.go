// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/models"
)

func generateRaw(t *testing.T, e *Engine) []byte {
	t.Helper()
	p, err := e.Generate(context.Background(), models.BackupManual)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestRestore_RoundTrip(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 3, 2)
	want := dumpState(t, db)
	raw := generateRaw(t, e)

	// diverge from the backup in every table
	if _, err := db.DeleteJob(ctx, "job-0"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := db.DeleteTask(ctx, "task-1-1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	setConfig(t, db, "theme", `"light"`)
	setConfig(t, db, "extra", `1`)
	if err := db.AppendStatistics(ctx, &models.StatisticsSnapshot{
		Date: "2026-05-02", Kind: models.StatisticsKindDaily, Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("AppendStatistics: %v", err)
	}

	result, err := e.Restore(ctx, raw)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.Jobs != 3 || result.Tasks != 6 || result.Config != 1 || result.Statistics != 1 || result.Compressed {
		t.Errorf("result = %+v", result)
	}
	assertSameState(t, dumpState(t, db), want)
}

func TestRestore_Idempotent(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 2, 2)
	raw := generateRaw(t, e)

	if _, err := e.Restore(ctx, raw); err != nil {
		t.Fatalf("first Restore: %v", err)
	}
	first := dumpState(t, db)
	if _, err := e.Restore(ctx, raw); err != nil {
		t.Fatalf("second Restore: %v", err)
	}
	assertSameState(t, dumpState(t, db), first)
}

func TestRestore_LeavesAuditAlone(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 1, 1)
	raw := generateRaw(t, e)

	if err := db.AppendAudit(ctx, &models.AuditEntry{Operation: models.OpDelete, Table: models.TableJobs, RecordID: "job-0", Timestamp: time.Now()}); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}
	if _, err := e.Restore(ctx, raw); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n, _ := db.CountAudit(ctx); n != 1 {
		t.Errorf("audit entries after restore = %d, want 1", n)
	}
}

func TestRestore_CompressedAutoDetect(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 2, 1)
	setConfig(t, db, KeyCompressBackups, "true")
	want := dumpState(t, db)
	raw := generateRaw(t, e)

	if _, err := db.DeleteJob(ctx, "job-1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	result, err := e.Restore(ctx, raw)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !result.Compressed {
		t.Error("result.Compressed = false for a compressed backup")
	}
	assertSameState(t, dumpState(t, db), want)
}

func TestRestore_LegacyDataField(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 1, 1)

	p, err := e.Generate(ctx, models.BackupManual)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	packed, err := p.Compress()
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	// older clients put the compressed bytes under "data"
	legacy, err := json.Marshal(map[string]any{
		"schemaVersion": p.SchemaVersion,
		"compressed":    true,
		"data":          packed.Bytes,
	})
	if err != nil {
		t.Fatalf("marshal legacy payload: %v", err)
	}

	result, err := e.Restore(ctx, legacy)
	if err != nil {
		t.Fatalf("Restore(legacy): %v", err)
	}
	if result.Jobs != 1 || result.Tasks != 1 || !result.Compressed {
		t.Errorf("result = %+v", result)
	}
}

func TestRestorePayload_CompressedValue(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 2, 0)

	p, err := e.Generate(ctx, models.BackupManual)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	packed, err := p.Compress()
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	result, err := e.RestorePayload(ctx, packed)
	if err != nil {
		t.Fatalf("RestorePayload: %v", err)
	}
	if result.Jobs != 2 || !result.Compressed {
		t.Errorf("result = %+v", result)
	}
}

func TestRestore_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"not json", `{{`, models.ErrValidation},
		{"no data", `{"schemaVersion":1}`, models.ErrValidation},
		{"data not object", `{"data":[]}`, models.ErrValidation},
		{"jobs missing", `{"data":{"tasks":[]}}`, models.ErrValidation},
		{"jobs not array", `{"data":{"jobs":{},"tasks":[]}}`, models.ErrValidation},
		{"tasks null", `{"data":{"jobs":[],"tasks":null}}`, models.ErrValidation},
		{"config not array", `{"data":{"jobs":[],"tasks":[],"config":"x"}}`, models.ErrValidation},
		{"compressed without bytes", `{"compressed":true}`, models.ErrValidation},
		{"byte out of range", `{"compressed":true,"bytes":[300]}`, models.ErrValidation},
		{"corrupt deflate stream", `{"compressed":true,"bytes":[1,2,3,4]}`, models.ErrCompression},
		{"newer schema", `{"schemaVersion":999,"data":{"jobs":[],"tasks":[]}}`, models.ErrValidation},
		{"dangling task", `{"data":{"jobs":[{"id":"j1"}],"tasks":[{"id":"t1","trabajoId":"j2"}]}}`, models.ErrValidation},
		{"duplicate job", `{"data":{"jobs":[{"id":"j1"},{"id":"j1"}],"tasks":[]}}`, models.ErrValidation},
		{"job without id", `{"data":{"jobs":[{"nombre":"x"}],"tasks":[]}}`, models.ErrValidation},
		{"config without key", `{"data":{"jobs":[],"tasks":[],"config":[{"value":1}]}}`, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, db := newTestEngine(t, testBackupConfig())
			seedRecords(t, db, 1, 1)
			before := dumpState(t, db)

			_, err := e.Restore(context.Background(), []byte(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Restore = %v, want %v", err, tt.wantErr)
			}
			assertSameState(t, dumpState(t, db), before)
		})
	}
}

func TestRestore_NestedCompression(t *testing.T) {
	inner, err := (&Payload{Data: &Data{Jobs: []*models.Job{}, Tasks: []*models.Task{}}}).Compress()
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	innerRaw, _ := json.Marshal(inner)
	packed, err := deflate(innerRaw)
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	outer, _ := json.Marshal(&Payload{Compressed: true, Bytes: packed})

	if _, err := Decode(outer); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Decode(nested) = %v, want ErrValidation", err)
	}
}

func TestRestore_CanceledContext(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	seedRecords(t, db, 1, 0)
	raw := generateRaw(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Restore(ctx, raw); !errors.Is(err, context.Canceled) {
		t.Errorf("Restore(canceled) = %v, want context.Canceled", err)
	}
}
