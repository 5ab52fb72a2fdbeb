// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/websocket"
)

// NewRouter builds the HTTP routes. hub may be nil, which disables the
// change stream endpoint.
func NewRouter(cfg config.ServerConfig, h *Handler, hub *websocket.Hub) http.Handler {
	mw := NewMiddleware(MiddlewareConfig{
		CORSAllowedOrigins: cfg.CORSOrigins,
		RateLimitRequests:  cfg.RateLimitReqs,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	r := chi.NewRouter()
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Use(SecurityHeaders())

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.ListJobs)
				r.Post("/", h.CreateJob)
				r.Get("/{id}", h.GetJob)
				r.Patch("/{id}", h.UpdateJob)
				r.Delete("/{id}", h.DeleteJob)
				r.Get("/{id}/tasks", h.JobTasks)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.ListTasks)
				r.Post("/", h.CreateTask)
				r.Get("/pending", h.PendingTasks)
				r.Get("/completed", h.CompletedTasks)
				r.Get("/day/{date}", h.TasksForDay)
				r.Get("/{id}", h.GetTask)
				r.Patch("/{id}", h.UpdateTask)
				r.Delete("/{id}", h.DeleteTask)
				r.Put("/{id}/status", h.SetTaskStatus)
				r.Get("/{id}/cost", h.TaskCost)
			})

			r.Route("/config", func(r chi.Router) {
				r.Get("/", h.ListConfig)
				r.Get("/{key}", h.GetConfig)
				r.Put("/{key}", h.SetConfig)
			})

			r.Get("/stats", h.Stats)
			r.Get("/stats/current", h.CurrentStats)
			r.Get("/stats/history", h.StatsHistory)
			r.Get("/audit", h.Audit)

			r.Route("/backups", func(r chi.Router) {
				r.Get("/", h.ListBackups)
				r.Post("/", h.GenerateBackup)
				r.Get("/export", h.ExportBackup)
				r.Post("/import", h.ImportBackup)
				r.Get("/{id}", h.GetBackup)
				r.Delete("/{id}", h.DeleteBackup)
				r.Post("/{id}/restore", h.RestoreBackup)
			})

			r.Get("/changes", h.Changes)
			if hub != nil {
				r.Get("/changes/ws", websocket.Handler(hub, cfg.CORSOrigins))
			}
		})
	})

	return r
}
