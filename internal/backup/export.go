// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// exportLayout names export files agenda-backup-yyyy-MM-dd-HHmm.json.
const exportLayout = "agenda-backup-2006-01-02-1504.json"

// maxImportSize caps what ImportFrom reads before parsing.
const maxImportSize = 512 << 20

// ExportFileName returns the file name used for an export taken at t.
func ExportFileName(t time.Time) string {
	return t.Format(exportLayout)
}

// ExportTo generates a manual backup and writes it to w as indented JSON.
func (e *Engine) ExportTo(ctx context.Context, w io.Writer) (*Payload, error) {
	payload, err := e.Generate(ctx, models.BackupManual)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return nil, models.WrapIO("write export", err)
	}
	return payload, nil
}

// ExportToFile generates a manual backup and writes it into dir, falling
// back to the configured export directory and then the working directory.
// It returns the path written.
func (e *Engine) ExportToFile(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = e.exportDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", models.WrapIO("create export directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".agenda-export-*.json")
	if err != nil {
		return "", models.WrapIO("create export file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // no-op after a successful rename

	payload, err := e.ExportTo(ctx, tmp)
	if err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", models.WrapIO("sync export file", err)
	}
	if err := tmp.Close(); err != nil {
		return "", models.WrapIO("close export file", err)
	}

	path := filepath.Join(dir, ExportFileName(payload.GeneratedAt.Local()))
	if err := os.Rename(tmpPath, path); err != nil {
		return "", models.WrapIO("rename export file", err)
	}

	logging.Ctx(ctx).Info().Str("path", path).Msg("Backup exported")
	return path, nil
}

// ImportFrom reads a backup from r and restores it.
func (e *Engine) ImportFrom(ctx context.Context, r io.Reader) (*RestoreResult, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxImportSize))
	if err != nil {
		return nil, models.WrapIO("read import", err)
	}
	return e.Restore(ctx, raw)
}

// ImportFromFile restores the backup stored at path.
func (e *Engine) ImportFromFile(ctx context.Context, path string) (*RestoreResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, models.WrapIO("open import file", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	result, err := e.ImportFrom(ctx, f)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("path", path).Msg("Backup imported")
	return result, nil
}
