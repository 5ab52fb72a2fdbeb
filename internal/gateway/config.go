// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package gateway

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// TableConfig labels configuration writes in metrics.
const TableConfig = "configuracion"

// GetConfig returns the entry for key or a *models.NotFoundError.
func (s *Service) GetConfig(ctx context.Context, key string) (entry *models.ConfigEntry, err error) {
	defer observe("get", TableConfig, time.Now(), &err)
	return s.db.GetConfig(ctx, key)
}

// SetConfig stores value under key, replacing any previous value. A value
// that is already a json.RawMessage is stored as is; an empty one is null.
func (s *Service) SetConfig(ctx context.Context, key string, value any) (entry *models.ConfigEntry, err error) {
	defer observe("set", TableConfig, time.Now(), &err)

	raw, ok := value.(json.RawMessage)
	if ok && len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if !ok {
		if raw, err = json.Marshal(value); err != nil {
			return nil, &models.ValidationError{Reason: "config value is not JSON encodable", Err: err}
		}
	}
	if !json.Valid(raw) {
		return nil, &models.ValidationError{Reason: "config value is not valid JSON"}
	}

	entry = &models.ConfigEntry{Key: key, Value: raw}
	if err := validate("config entry", entry); err != nil {
		return nil, err
	}

	release := s.write()
	err = s.db.UpsertConfig(ctx, entry)
	release()
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Str("key", key).Msg("Config entry set")
	if s.OnConfigSet != nil {
		s.OnConfigSet(ctx, key)
	}
	return entry, nil
}

// ListConfig returns every configuration entry ordered by key.
func (s *Service) ListConfig(ctx context.Context) (entries []*models.ConfigEntry, err error) {
	defer observe("list", TableConfig, time.Now(), &err)
	return s.db.ListConfig(ctx)
}
