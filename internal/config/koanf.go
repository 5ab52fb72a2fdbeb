// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file is used.
var DefaultConfigPaths = []string{
	"agenda.yaml",
	"agenda.yml",
	"config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Database: DatabaseConfig{
			Path:      filepath.Join(dataDir, "agenda.duckdb"),
			MaxMemory: "256MB",
			Threads:   0,
		},
		Engine: EngineConfig{
			Origin:        defaultOrigin(),
			SchemaVersion: 2,
			EventBuffer:   256,
		},
		Backup: BackupConfig{
			AutoBackup:    true,
			IntervalHours: 24,
			InitialDelay:  5 * time.Second,
			KeepCount:     5,
			Compress:      true,
			Encrypt:       false,
			ExportDir:     filepath.Join(dataDir, "exports"),
		},
		Forward: ForwardConfig{
			Mode: "none",
			HTTP: HTTPForwardConfig{
				Timeout: 30 * time.Second,
			},
			NATS: NATSForwardConfig{
				URL:     "nats://127.0.0.1:4222",
				Subject: "agenda.backups",
			},
			SpoolPath:          filepath.Join(dataDir, "spool"),
			RetryInterval:      time.Minute,
			MaxAttempts:        10,
			RetryRate:          2,
			BreakerMaxFailures: 5,
			BreakerTimeout:     time.Minute,
		},
		Server: ServerConfig{
			Enabled:         false,
			Host:            "127.0.0.1",
			Port:            7420,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "agenda")
	}
	return "data"
}

func defaultOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "agenda-local"
	}
	return "agenda-local@" + host
}

// Load reads the layered configuration and validates it.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"agenda_db_path":        "database.path",
	"agenda_db_max_memory":  "database.max_memory",
	"agenda_db_threads":     "database.threads",
	"agenda_origin":         "engine.origin",
	"agenda_schema_version": "engine.schema_version",
	"agenda_event_buffer":   "engine.event_buffer",

	"auto_backup":           "backup.auto_backup",
	"backup_interval_hours": "backup.interval_hours",
	"backup_initial_delay":  "backup.initial_delay",
	"keep_backup_count":     "backup.keep_count",
	"keep_backup_days":      "backup.keep_count",
	"compress_backups":      "backup.compress",
	"encrypt_backups":       "backup.encrypt",
	"backup_export_dir":     "backup.export_dir",

	"forward_mode":                 "forward.mode",
	"forward_http_url":             "forward.http.url",
	"forward_http_timeout":         "forward.http.timeout",
	"forward_nats_url":             "forward.nats.url",
	"forward_nats_subject":         "forward.nats.subject",
	"forward_spool_path":           "forward.spool_path",
	"forward_retry_interval":       "forward.retry_interval",
	"forward_max_attempts":         "forward.max_attempts",
	"forward_retry_rate":           "forward.retry_rate",
	"forward_breaker_max_failures": "forward.breaker_max_failures",
	"forward_breaker_timeout":      "forward.breaker_timeout",

	"http_enabled":        "server.enabled",
	"http_host":           "server.host",
	"http_port":           "server.port",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps known variables to koanf paths and drops the rest.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
