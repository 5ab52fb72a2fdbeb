// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"strconv"

	"github.com/tomtom215/agenda/internal/models"
)

// UpsertConfig stores value under key, replacing any previous value.
func (q *Queries) UpsertConfig(ctx context.Context, e *models.ConfigEntry) error {
	value := string(e.Value)
	if value == "" {
		value = "null"
	}
	_, err := q.x.ExecContext(ctx, `
		INSERT INTO config_entries (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		e.Key, value)
	return models.WrapIO("upsert config entry", err)
}

// GetConfig returns the entry or a *models.NotFoundError.
func (q *Queries) GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error) {
	var value string
	err := q.x.QueryRowContext(ctx, `SELECT value FROM config_entries WHERE key = ?`, key).Scan(&value)
	if isNoRows(err) {
		return nil, &models.NotFoundError{Table: "config", ID: key}
	}
	if err != nil {
		return nil, models.WrapIO("get config entry", err)
	}
	return &models.ConfigEntry{Key: key, Value: []byte(value)}, nil
}

// ListConfig returns every entry ordered by key.
func (q *Queries) ListConfig(ctx context.Context) ([]*models.ConfigEntry, error) {
	rows, err := q.x.QueryContext(ctx, `SELECT key, value FROM config_entries ORDER BY key`)
	if err != nil {
		return nil, models.WrapIO("list config entries", err)
	}
	defer rows.Close()

	out := []*models.ConfigEntry{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, models.WrapIO("list config entries", err)
		}
		out = append(out, &models.ConfigEntry{Key: key, Value: []byte(value)})
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list config entries", err)
	}
	return out, nil
}

// DeleteAllConfig empties the config table.
func (q *Queries) DeleteAllConfig(ctx context.Context) error {
	_, err := q.x.ExecContext(ctx, `DELETE FROM config_entries`)
	return models.WrapIO("clear config entries", err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
