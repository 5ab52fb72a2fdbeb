// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete engine configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Engine   EngineConfig   `koanf:"engine"`
	Backup   BackupConfig   `koanf:"backup"`
	Forward  ForwardConfig  `koanf:"forward"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	// Path of the database file, or ":memory:".
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory" validate:"required"`
	// Threads = 0 means runtime.NumCPU().
	Threads int `koanf:"threads" validate:"gte=0"`
}

// EngineConfig holds engine-wide settings.
type EngineConfig struct {
	// Origin is written into every audit entry to describe this device.
	Origin string `koanf:"origin" validate:"required"`
	// SchemaVersion is the target schema version passed to the schema manager.
	SchemaVersion int `koanf:"schema_version" validate:"gte=1"`
	// EventBuffer is the size of the in-process change feed buffer.
	EventBuffer int64 `koanf:"event_buffer" validate:"gte=0"`
}

// BackupConfig holds the backup defaults. Runtime overrides live in the
// config_entries table under the keys in backup.SettingKeys.
type BackupConfig struct {
	AutoBackup    bool          `koanf:"auto_backup"`
	IntervalHours float64       `koanf:"interval_hours" validate:"gt=0"`
	InitialDelay  time.Duration `koanf:"initial_delay" validate:"gte=0"`
	KeepCount     int           `koanf:"keep_count" validate:"gte=1"`
	Compress      bool          `koanf:"compress"`
	// Encrypt is reserved. Setting it logs a warning and changes nothing.
	Encrypt bool `koanf:"encrypt"`
	// ExportDir is where ExportToFile writes when no directory is given.
	ExportDir string `koanf:"export_dir"`
}

// ForwardConfig configures the best-effort remote copy of each backup.
type ForwardConfig struct {
	Mode string            `koanf:"mode" validate:"oneof=none http nats"`
	HTTP HTTPForwardConfig `koanf:"http"`
	NATS NATSForwardConfig `koanf:"nats"`

	// SpoolPath is the Badger directory for failed forwards. Empty keeps
	// the spool in memory.
	SpoolPath     string        `koanf:"spool_path"`
	RetryInterval time.Duration `koanf:"retry_interval" validate:"gt=0"`
	MaxAttempts   int           `koanf:"max_attempts" validate:"gte=1"`
	// RetryRate caps forwards per second while draining the spool.
	RetryRate float64 `koanf:"retry_rate" validate:"gt=0"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"gte=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// HTTPForwardConfig is used when Mode is "http".
type HTTPForwardConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// NATSForwardConfig is used when Mode is "nats".
type NATSForwardConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// ServerConfig configures the local HTTP surface.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// BackupInterval converts IntervalHours to a duration.
func (b BackupConfig) BackupInterval() time.Duration {
	return time.Duration(b.IntervalHours * float64(time.Hour))
}

// Address is the listen address built from Host and Port.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
