// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package validation wraps go-playground/validator v10 with a shared
// instance and the engine's custom tags.
//
// Custom tags:
//
//	plandate   - empty or a calendar date in yyyy-MM-dd form
//	clocktime  - empty or a 24h time in HH:mm form
//
// Field names in errors use the json tag, so messages read
// "fechaPlanificada must be a date in yyyy-MM-dd form" rather than the Go
// field name.
package validation
