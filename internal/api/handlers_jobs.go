// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/agenda/internal/models"
)

// ListJobs handles GET /jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()
	jobs, err := h.deps.Gateway.ListJobs(r.Context(), models.JobFilter{
		Estado:  models.JobEstado(q.Get("estado")),
		Cliente: q.Get("cliente"),
	})
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(jobs, len(jobs))
}

// CreateJob handles POST /jobs.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in models.Job
	if !decodeBody(w, r, &in) {
		return
	}
	rw := NewResponseWriter(w, r)
	job, err := h.deps.Gateway.CreateJob(r.Context(), &in)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Created(job)
}

// GetJob handles GET /jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	job, err := h.deps.Gateway.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(job)
}

// UpdateJob handles PATCH /jobs/{id}. Nested objects merge field by field.
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	var patch models.JobPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	rw := NewResponseWriter(w, r)
	job, err := h.deps.Gateway.UpdateJob(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(job)
}

// DeleteJob handles DELETE /jobs/{id}, removing its tasks too. A missing
// id answers 200 with deleted=false.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	deleted, err := h.deps.Gateway.DeleteJob(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(deleteResult{ID: id, Deleted: deleted})
}

// JobTasks handles GET /jobs/{id}/tasks.
func (h *Handler) JobTasks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	filter, err := taskFilter(r)
	if err != nil {
		rw.Failure(err)
		return
	}
	tasks, err := h.deps.Gateway.TasksByJob(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(tasks, len(tasks))
}
