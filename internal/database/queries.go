// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every repository operation. The same methods run against
// the pool or inside a transaction depending on how it was obtained.
type Queries struct {
	x execer
}

// scanDoc decodes a JSON document column into dst.
func scanDoc(doc string, dst any) error {
	if err := json.Unmarshal([]byte(doc), dst); err != nil {
		return models.WrapIO("decode stored record", err)
	}
	return nil
}

func encodeDoc(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", models.WrapIO("encode record", err)
	}
	return string(b), nil
}

// nullableJSON turns an empty raw message into SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (q *Queries) count(ctx context.Context, op, query string, args ...any) (int, error) {
	var n int64
	if err := q.x.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, models.WrapIO(op, err)
	}
	return int(n), nil
}

// countBy runs a "key, COUNT(*)" grouping query.
func (q *Queries) countBy(ctx context.Context, op, query string) (map[string]int, error) {
	rows, err := q.x.QueryContext(ctx, query)
	if err != nil {
		return nil, models.WrapIO(op, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, models.WrapIO(op, err)
		}
		out[key] = int(n)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO(op, err)
	}
	return out, nil
}
