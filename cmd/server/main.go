// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package main runs the Agenda engine as a standalone process.
//
// The engine keeps jobs, tasks, settings, statistics, the audit journal and
// backups in a local DuckDB file. Running it as a process adds the
// automatic backup scheduler, the optional remote forward of each backup
// and, when enabled, the loopback HTTP API with its change stream.
//
// # Startup
//
//  1. Configuration: defaults, then config.yaml (or CONFIG_PATH), then
//     environment variables (koanf v2)
//  2. Logging: zerolog at the configured level and format
//  3. Engine: database and migrations, then every component
//  4. Supervisor tree: scheduler, retry loop, observer, hub, HTTP server
//
// # Configuration
//
// Common environment variables:
//
//	AGENDA_DB_PATH=/var/lib/agenda/agenda.duckdb
//	AUTO_BACKUP=true
//	BACKUP_INTERVAL_HOURS=24
//	FORWARD_MODE=http FORWARD_HTTP_URL=https://backup.example/agenda
//	HTTP_ENABLED=true HTTP_PORT=7420
//	LOG_LEVEL=debug LOG_FORMAT=console
//
// # Signals
//
// SIGINT and SIGTERM cancel the tree. Services stop, an in-flight backup
// completes, then the store is closed.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/engine"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", engine.Version).
		Str("db_path", cfg.Database.Path).
		Str("forward_mode", cfg.Forward.Mode).
		Bool("server_enabled", cfg.Server.Enabled).
		Msg("Starting Agenda")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize engine")
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), treeCfg)
	if err != nil {
		_ = eng.Shutdown(context.Background())
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	eng.Register(tree)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if cfg.Server.Enabled {
		logging.Info().Str("addr", cfg.Server.Address()).Msg("Local API enabled")
	}

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Engine shutdown error")
	}

	logging.Info().Msg("Agenda stopped")
}
