// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package backup

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// Config entry keys read by the backup engine and scheduler.
const (
	KeyAutoBackup          = "autoBackup"
	KeyBackupIntervalHours = "backupIntervalHours"
	KeyKeepBackupCount     = "keepBackupCount"
	KeyKeepBackupDays      = "keepBackupDays"
	KeyCompressBackups     = "compressBackups"
	KeyEncryptBackups      = "encryptBackups"
)

// ScheduleKey reports whether key changes when or whether the scheduler
// fires.
func ScheduleKey(key string) bool {
	return key == KeyAutoBackup || key == KeyBackupIntervalHours
}

// DefaultKeepCount is the retention used when nothing is configured.
const DefaultKeepCount = 5

// Settings is the effective backup configuration.
type Settings struct {
	AutoBackup bool          `json:"autoBackup"`
	Interval   time.Duration `json:"interval"`
	KeepCount  int           `json:"keepCount"`
	Compress   bool          `json:"compress"`
	Encrypt    bool          `json:"encrypt"`
}

// defaultSettings maps the file/env configuration onto Settings.
func defaultSettings(cfg config.BackupConfig) Settings {
	s := Settings{
		AutoBackup: cfg.AutoBackup,
		Interval:   cfg.BackupInterval(),
		KeepCount:  cfg.KeepCount,
		Compress:   cfg.Compress,
		Encrypt:    cfg.Encrypt,
	}
	if s.Interval <= 0 {
		s.Interval = 24 * time.Hour
	}
	if s.KeepCount <= 0 {
		s.KeepCount = DefaultKeepCount
	}
	return s
}

// applyEntries overrides s with any recognized config entries. Values of
// the wrong type are logged and ignored.
func (s Settings) applyEntries(entries []*models.ConfigEntry) Settings {
	// keepBackupCount wins over its older alias regardless of order
	var keepAlias, keepCount *int

	for _, e := range entries {
		switch e.Key {
		case KeyAutoBackup:
			decodeSetting(e, &s.AutoBackup)
		case KeyCompressBackups:
			decodeSetting(e, &s.Compress)
		case KeyEncryptBackups:
			decodeSetting(e, &s.Encrypt)
		case KeyBackupIntervalHours:
			var hours float64
			if decodeSetting(e, &hours) && hours > 0 {
				s.Interval = time.Duration(hours * float64(time.Hour))
			}
		case KeyKeepBackupCount:
			var n int
			if decodeSetting(e, &n) && n > 0 {
				keepCount = &n
			}
		case KeyKeepBackupDays:
			var n int
			if decodeSetting(e, &n) && n > 0 {
				keepAlias = &n
			}
		}
	}

	switch {
	case keepCount != nil:
		s.KeepCount = *keepCount
	case keepAlias != nil:
		s.KeepCount = *keepAlias
	}
	return s
}

func decodeSetting(e *models.ConfigEntry, dst any) bool {
	if err := json.Unmarshal(e.Value, dst); err != nil {
		logging.Warn().Err(err).Str("key", e.Key).Str("value", string(e.Value)).Msg("Ignoring malformed backup setting")
		return false
	}
	return true
}

// Settings returns the effective settings: configuration defaults
// overridden by the config_entries table.
func (e *Engine) Settings(ctx context.Context) Settings {
	entries, err := e.db.ListConfig(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to read backup settings, using defaults")
		return e.defaults
	}
	return e.defaults.applyEntries(entries)
}
