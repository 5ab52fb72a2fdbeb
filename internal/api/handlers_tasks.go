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

func taskFilter(r *http.Request) (models.TaskFilter, error) {
	q := r.URL.Query()
	completada, err := parseBool(r, "completada")
	if err != nil {
		return models.TaskFilter{}, err
	}
	return models.TaskFilter{
		TrabajoID:  q.Get("trabajoId"),
		Estado:     models.TaskEstado(q.Get("estado")),
		Prioridad:  models.Prioridad(q.Get("prioridad")),
		Completada: completada,
		Fecha:      q.Get("fecha"),
	}, nil
}

// ListTasks handles GET /tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	filter, err := taskFilter(r)
	if err != nil {
		rw.Failure(err)
		return
	}
	tasks, err := h.deps.Gateway.ListTasks(r.Context(), filter)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(tasks, len(tasks))
}

// CreateTask handles POST /tasks. The referenced job must exist.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in models.Task
	if !decodeBody(w, r, &in) {
		return
	}
	rw := NewResponseWriter(w, r)
	task, err := h.deps.Gateway.CreateTask(r.Context(), &in)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Created(task)
}

// GetTask handles GET /tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	task, err := h.deps.Gateway.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(task)
}

// UpdateTask handles PATCH /tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	rw := NewResponseWriter(w, r)
	task, err := h.deps.Gateway.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	deleted, err := h.deps.Gateway.DeleteTask(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(deleteResult{ID: id, Deleted: deleted})
}

// PendingTasks handles GET /tasks/pending.
func (h *Handler) PendingTasks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tasks, err := h.deps.Gateway.PendingTasks(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(tasks, len(tasks))
}

// CompletedTasks handles GET /tasks/completed.
func (h *Handler) CompletedTasks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tasks, err := h.deps.Gateway.CompletedTasks(r.Context())
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(tasks, len(tasks))
}

// TasksForDay handles GET /tasks/day/{date} with date as yyyy-MM-dd.
func (h *Handler) TasksForDay(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	tasks, err := h.deps.Gateway.TasksForDay(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.List(tasks, len(tasks))
}

type statusRequest struct {
	Estado models.TaskEstado `json:"estado"`
}

// SetTaskStatus handles PUT /tasks/{id}/status. completada follows estado.
func (h *Handler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rw := NewResponseWriter(w, r)
	task, err := h.deps.Gateway.SetTaskStatus(r.Context(), chi.URLParam(r, "id"), req.Estado)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(task)
}

type costResult struct {
	ID    string  `json:"id"`
	Costo float64 `json:"costo"`
}

// TaskCost handles GET /tasks/{id}/cost.
func (h *Handler) TaskCost(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := chi.URLParam(r, "id")
	cost, err := h.deps.Gateway.TaskCost(r.Context(), id)
	if err != nil {
		rw.Failure(err)
		return
	}
	rw.Success(costResult{ID: id, Costo: cost})
}
