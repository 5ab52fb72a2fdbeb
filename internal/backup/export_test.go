// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/models"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

var exportNamePattern = regexp.MustCompile(`^agenda-backup-\d{4}-\d{2}-\d{2}-\d{4}\.json$`)

func TestExportFileName(t *testing.T) {
	got := ExportFileName(time.Date(2026, 3, 4, 5, 6, 59, 0, time.UTC))
	if got != "agenda-backup-2026-03-04-0506.json" {
		t.Errorf("ExportFileName = %q", got)
	}
}

func TestExportTo_IndentedJSON(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	seedRecords(t, db, 1, 1)

	var buf bytes.Buffer
	p, err := e.ExportTo(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	if p.Metadata.TotalJobs != 1 {
		t.Errorf("TotalJobs = %d", p.Metadata.TotalJobs)
	}
	if !strings.Contains(buf.String(), "\n  \"schemaVersion\"") {
		t.Errorf("export is not indented: %.80s", buf.String())
	}
	if records, _ := e.ListBackups(context.Background()); len(records) != 1 || records[0].Kind != models.BackupManual {
		t.Errorf("export did not store a manual backup: %+v", records)
	}
}

func TestExportImportFile(t *testing.T) {
	e, db := newTestEngine(t, testBackupConfig())
	ctx := context.Background()
	seedRecords(t, db, 2, 2)
	want := dumpState(t, db)

	dir := filepath.Join(t.TempDir(), "exports")
	path, err := e.ExportToFile(ctx, dir)
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if filepath.Dir(path) != dir || !exportNamePattern.MatchString(filepath.Base(path)) {
		t.Errorf("export path = %q", path)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("export dir holds %d files, want 1 (temp file left behind?)", len(entries))
	}

	if _, err := db.DeleteTask(ctx, "task-0-0"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	result, err := e.ImportFromFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFromFile: %v", err)
	}
	if result.Tasks != 4 {
		t.Errorf("imported %d tasks, want 4", result.Tasks)
	}
	assertSameState(t, dumpState(t, db), want)
}

func TestExportToFile_ConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, config.BackupConfig{IntervalHours: 24, KeepCount: 5, ExportDir: dir})

	path, err := e.ExportToFile(context.Background(), "")
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("export written to %q, want under %q", path, dir)
	}
}

func TestImport_Errors(t *testing.T) {
	e, _ := newTestEngine(t, testBackupConfig())
	ctx := context.Background()

	if _, err := e.ImportFromFile(ctx, filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, models.ErrIO) {
		t.Errorf("ImportFromFile(missing) = %v, want ErrIO", err)
	}
	if _, err := e.ImportFrom(ctx, failingReader{}); !errors.Is(err, models.ErrIO) {
		t.Errorf("ImportFrom(failing reader) = %v, want ErrIO", err)
	}
	if _, err := e.ImportFrom(ctx, strings.NewReader("not a backup")); !errors.Is(err, models.ErrValidation) {
		t.Errorf("ImportFrom(garbage) = %v, want ErrValidation", err)
	}
}
