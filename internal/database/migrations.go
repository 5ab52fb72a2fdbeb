// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// LatestSchemaVersion is the highest version Open can migrate to.
var LatestSchemaVersion = len(migrations)

// Migration is one versioned schema step.
type Migration struct {
	Version     int
	Name        string
	Description string
	Statements  []string
	AppliedAt   time.Time // populated by MigrationHistory
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR NOT NULL,
	description VARCHAR,
	applied_at TIMESTAMP NOT NULL
)`

// migrations are append-only. Never edit a step once it has shipped.
var migrations = []Migration{
	{
		Version:     1,
		Name:        "initial_schema",
		Description: "Create record, audit, statistics, backup and config tables",
		Statements: []string{
			`CREATE SEQUENCE IF NOT EXISTS audit_seq START 1`,
			`CREATE SEQUENCE IF NOT EXISTS statistics_seq START 1`,
			`CREATE SEQUENCE IF NOT EXISTS backups_seq START 1`,
			`CREATE TABLE IF NOT EXISTS jobs (
				id VARCHAR PRIMARY KEY,
				nombre VARCHAR NOT NULL,
				cliente VARCHAR NOT NULL DEFAULT '',
				estado VARCHAR NOT NULL,
				doc VARCHAR NOT NULL,
				fecha_creacion TIMESTAMP NOT NULL,
				fecha_actualizacion TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS tasks (
				id VARCHAR PRIMARY KEY,
				trabajo_id VARCHAR NOT NULL,
				titulo VARCHAR NOT NULL,
				estado VARCHAR NOT NULL,
				prioridad VARCHAR NOT NULL,
				completada BOOLEAN NOT NULL DEFAULT false,
				fecha_planificada VARCHAR NOT NULL DEFAULT '',
				costo_valor DOUBLE,
				doc VARCHAR NOT NULL,
				fecha_creacion TIMESTAMP NOT NULL,
				fecha_actualizacion TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS audit_entries (
				id BIGINT PRIMARY KEY DEFAULT nextval('audit_seq'),
				operation VARCHAR NOT NULL,
				table_name VARCHAR NOT NULL,
				record_id VARCHAR NOT NULL,
				old_value VARCHAR,
				new_value VARCHAR,
				timestamp TIMESTAMP NOT NULL,
				origin VARCHAR NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS statistics (
				id BIGINT PRIMARY KEY DEFAULT nextval('statistics_seq'),
				date VARCHAR NOT NULL,
				kind VARCHAR NOT NULL,
				active_jobs INTEGER NOT NULL,
				total_jobs INTEGER NOT NULL,
				pending_tasks INTEGER NOT NULL,
				total_tasks INTEGER NOT NULL,
				tasks_completed_today INTEGER NOT NULL,
				estimated_revenue_today DOUBLE NOT NULL,
				timestamp TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS backups (
				id BIGINT PRIMARY KEY DEFAULT nextval('backups_seq'),
				date TIMESTAMP NOT NULL,
				kind VARCHAR NOT NULL,
				payload VARCHAR NOT NULL,
				size_bytes BIGINT NOT NULL,
				forwarded BOOLEAN NOT NULL DEFAULT false
			)`,
			`CREATE TABLE IF NOT EXISTS config_entries (
				key VARCHAR PRIMARY KEY,
				value VARCHAR NOT NULL
			)`,
		},
	},
	{
		Version:     2,
		Name:        "secondary_indexes",
		Description: "Index the columns used by filters, range queries and retention",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_jobs_nombre ON jobs(nombre)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_cliente ON jobs(cliente)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_estado ON jobs(estado)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_fecha_creacion ON jobs(fecha_creacion)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_fecha_actualizacion ON jobs(fecha_actualizacion)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_trabajo_id ON tasks(trabajo_id)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_fecha_planificada ON tasks(fecha_planificada)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_estado ON tasks(estado)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_prioridad ON tasks(prioridad)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_completada ON tasks(completada)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_fecha_creacion ON tasks(fecha_creacion)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_entries(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_operation ON audit_entries(operation)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_table ON audit_entries(table_name)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_origin ON audit_entries(origin)`,
			`CREATE INDEX IF NOT EXISTS idx_statistics_date ON statistics(date)`,
			`CREATE INDEX IF NOT EXISTS idx_backups_date ON backups(date)`,
			`CREATE INDEX IF NOT EXISTS idx_backups_kind ON backups(kind)`,
		},
	},
}

// migrate applies every migration up to target that is not yet recorded.
func (db *DB) migrate(ctx context.Context, target int) error {
	if target < 1 || target > len(migrations) {
		return &models.SchemaError{
			Step: "resolve target",
			Err:  fmt.Errorf("unknown schema version %d (latest is %d)", target, len(migrations)),
		}
	}

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return &models.SchemaError{Step: "create schema_migrations", Err: err}
	}

	current, err := db.CurrentVersion(ctx)
	if err != nil {
		return &models.SchemaError{Step: "read version", Err: err}
	}
	if current > target {
		return &models.SchemaError{
			Step:    "check version",
			Version: current,
			Err:     fmt.Errorf("database is newer than target version %d", target),
		}
	}

	applied := 0
	for _, m := range migrations[:target] {
		if m.Version <= current {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return &models.SchemaError{Step: m.Name, Version: m.Version, Err: err}
		}
		applied++
		logging.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applied migration")
	}

	if applied > 0 {
		logging.Info().Int("applied", applied).Int("version", target).Msg("Schema migrations complete")
	}
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			rollback(tx, err)
			return err
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
		m.Version, m.Name, m.Description, time.Now().UTC())
	if err != nil {
		rollback(tx, err)
		return err
	}
	return tx.Commit()
}

// CurrentVersion returns the highest applied migration, or 0 for a fresh
// database.
func (db *DB) CurrentVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrationHistory lists applied migrations in version order.
func (db *DB) MigrationHistory(ctx context.Context) ([]Migration, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT version, name, COALESCE(description, ''), applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	var history []Migration
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
