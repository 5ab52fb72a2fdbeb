// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// ListConfig handles GET /config.
func (h *Handler) ListConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	entries, err := h.deps.Gateway.ListConfig(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(entries, len(entries))
}

// GetConfig handles GET /config/{key}.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	entry, err := h.deps.Gateway.GetConfig(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(entry)
}

// SetConfig handles PUT /config/{key}. The body is the JSON value itself.
func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)
	entry, err := h.deps.Gateway.SetConfig(r.Context(), chi.URLParam(r, "key"), json.RawMessage(raw))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(entry)
}
