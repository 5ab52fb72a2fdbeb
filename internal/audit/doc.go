// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package audit is the append-only history of record mutations.
//
// The gateway calls Journal.Append after every create, update and delete
// with JSON snapshots of the record before and after. Entries carry a
// monotonically increasing id, a UTC timestamp and the configured origin
// (a device or client descriptor).
//
// Append never returns an error. A failed write is logged and counted in
// agenda_audit_failures_total; losing a history entry must not block the
// mutation that produced it.
package audit
