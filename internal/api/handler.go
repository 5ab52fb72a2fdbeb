// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/audit"
	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/events"
	"github.com/tomtom215/agenda/internal/gateway"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/stats"
)

// maxBodySize caps JSON request bodies. Imports use maxImportSize.
const (
	maxBodySize   = 1 << 20
	maxImportSize = 256 << 20
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the engine components the handlers call.
type Dependencies struct {
	Gateway   gateway.Gateway
	Backups   *backup.Engine
	Scheduler *backup.Scheduler
	Journal   *audit.Journal
	Stats     *stats.Aggregator
	Observer  *events.Observer
	DB        Pinger
	Version   string
}

// Handler serves the API routes.
type Handler struct {
	deps Dependencies
}

// NewHandler creates a handler over deps.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps}
}

// decodeBody decodes a JSON body into dst, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			NewResponseWriter(w, r).Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		NewResponseWriter(w, r).BadRequest("invalid JSON body: " + err.Error())
		return false
	}
	return true
}

// readBody returns the raw body, writing a 400 when it is empty or too
// large.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		NewResponseWriter(w, r).Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
		return nil, false
	}
	if len(raw) == 0 {
		NewResponseWriter(w, r).BadRequest("request body is empty")
		return nil, false
	}
	return raw, true
}

// parseBool reads an optional boolean query parameter.
func parseBool(r *http.Request, name string) (*bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &models.ValidationError{Reason: name + " must be true or false"}
	}
	return &b, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Reason: name + " must be a positive integer"}
	}
	return id, nil
}

type deleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
