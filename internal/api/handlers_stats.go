// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/agenda/internal/models"
)

// Stats handles GET /stats with the whole-store inspection summary.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s, err := h.deps.Stats.DatabaseStats(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(s)
}

// CurrentStats handles GET /stats/current. It computes a snapshot without
// appending it.
func (h *Handler) CurrentStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	s, err := h.deps.Stats.Compute(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(s)
}

// StatsHistory handles GET /stats/history?limit=N, oldest first.
func (h *Handler) StatsHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			rw.Failure(&models.ValidationError{Reason: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	history, err := h.deps.Stats.History(r.Context(), limit)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(history, len(history))
}

// Audit handles GET /audit?from=&to=. Both bounds are optional RFC 3339
// timestamps; from is inclusive, to exclusive.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	from, err := parseTime(r, "from")
	if err != nil {
		rw.Failure(err)
		return
	}
	to, err := parseTime(r, "to")
	if err != nil {
		rw.Failure(err)
		return
	}
	entries, err := h.deps.Journal.QueryByTimeRange(r.Context(), from, to)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(entries, len(entries))
}

func parseTime(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &models.ValidationError{Reason: name + " must be an RFC 3339 timestamp", Err: err}
	}
	return t, nil
}
