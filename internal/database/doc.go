// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package database is the schema manager and record store, backed by DuckDB.

Open creates the file (or an in-memory database), then applies the
versioned migrations in migrations.go up to the requested version. Each
applied step is recorded in schema_migrations; a database already at a
newer version than requested, or any failing step, returns a
*models.SchemaError and no handle.

Tables:
  - jobs, tasks: one row per record. The full record is kept as a JSON
    document in the doc column; filter and sort columns are duplicated
    alongside it.
  - audit_entries: append-only history, ids from audit_seq.
  - statistics: snapshot series, ids from statistics_seq.
  - backups: retained backup payloads, ids from backups_seq.
  - config_entries: key to JSON value.

All repository operations live on Queries. DB embeds one bound to the
pool; WithTx passes one bound to a transaction:

	err := db.WithTx(ctx, func(q *database.Queries) error {
	    if err := q.DeleteAllJobs(ctx); err != nil {
	        return err
	    }
	    return q.InsertJob(ctx, job)
	})

Storage failures are returned as *models.IOError; missing records as
*models.NotFoundError.
*/
package database
