// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package logging provides the zerolog-backed structured logger used across
// the agenda engine.
//
// The engine runs on the end user's device, so the default output is JSON on
// stderr and the console writer is meant for local development only.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("job_id", id).Msg("Job created")
//	logging.Error().Err(err).Msg("Audit append failed")
//
//	// With an operation id carried through context
//	ctx = logging.ContextWithNewOperationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Restore started")
//
// # Adapters
//
// Two adapters bridge libraries that bring their own logging interfaces:
//
//   - NewSlogLogger returns a *slog.Logger for sutureslog.
//   - NewWatermillLogger returns a watermill.LoggerAdapter for the NATS
//     forwarder; NewQuietWatermillLogger, used by the change feed, writes
//     Watermill's info lines at debug.
//
// Always terminate log chains with Msg or Send, otherwise nothing is
// written.
package logging
