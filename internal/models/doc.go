// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package models defines the records stored by the engine, the typed
// patches used to update them, and the engine's error taxonomy.
//
// JSON keys follow the application's wire format (trabajos/tareas with
// Spanish field names), so a backup produced here can be read by the UI
// layer unchanged. Go identifiers are English.
//
// Partial updates use JobPatch and TaskPatch. A nil field leaves the stored
// value untouched and nested patches merge into the stored sub-structure:
//
//	hora := "10:30"
//	patch := models.TaskPatch{
//	    Planificacion: &models.PlanificacionPatch{HoraRealizada: &hora},
//	}
//
// changes only planificacion.horaRealizada.
package models
