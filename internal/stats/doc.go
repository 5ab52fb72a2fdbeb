// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package stats derives statistics from the stored jobs and tasks.
//
// The gateway calls Aggregator.Recompute after every committed mutation,
// which appends one snapshot to the series. Snapshots are never updated or
// merged per day. Like the audit journal, a failed recompute is logged and
// does not fail the mutation.
package stats
