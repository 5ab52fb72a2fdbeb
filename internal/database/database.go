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
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps the DuckDB connection pool. The embedded Queries runs outside any
// transaction; WithTx hands out a Queries bound to one.
type DB struct {
	*Queries

	conn *sql.DB
	cfg  config.DatabaseConfig
}

// Open opens (or creates) the database at cfg.Path and brings its schema to
// targetVersion. Any schema failure closes the handle and returns a
// *models.SchemaError.
func Open(ctx context.Context, cfg config.DatabaseConfig, targetVersion int) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = MemoryPath
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if cfg.Path != MemoryPath {
		dir := filepath.Dir(cfg.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, models.WrapIO("create database directory", err)
			}
		}
	}

	dsn := fmt.Sprintf("%s?threads=%d", cfg.Path, threads)
	if cfg.MaxMemory != "" {
		dsn += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, models.WrapIO("open database", err)
	}
	configurePool(conn)

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, models.WrapIO("ping database", err)
	}

	db := &DB{Queries: &Queries{x: conn}, conn: conn, cfg: cfg}
	if err := db.migrate(ctx, targetVersion); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("schema_version", targetVersion).
		Msg("Database opened")
	return db, nil
}

// configurePool sizes the pool. All connections share one DuckDB instance,
// so ":memory:" databases are visible across the pool.
func configurePool(conn *sql.DB) {
	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Path returns the configured database path.
func (db *DB) Path() string {
	return db.cfg.Path
}

// Conn exposes the pool for callers that need raw SQL, such as tests.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return errors.New("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return models.WrapIO("checkpoint", err)
	}
	return nil
}

// Close checkpoints and closes the pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.cfg.Path != MemoryPath {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}

// WithTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise. DuckDB transactions are snapshot
// isolated, so fn also gets a coherent read view.
func (db *DB) WithTx(ctx context.Context, fn func(q *Queries) error) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.WrapIO("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
		if err != nil {
			rollback(tx, err)
		}
	}()

	if err = fn(&Queries{x: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return models.WrapIO("commit transaction", err)
	}
	return nil
}

func rollback(tx *sql.Tx, cause error) {
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		logging.Error().
			Err(rbErr).
			AnErr("original_error", cause).
			Msg("Transaction rollback failed")
	}
}

// closeQuietly closes a resource on an error path where the close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
