// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package testinfra provides shared fixtures for package tests.
//
// # Database
//
// NewDB opens a fully migrated in-memory DuckDB database and closes it when
// the test ends. Database use is serialized across the test binary:
//
//	func TestSomething(t *testing.T) {
//	    db := testinfra.NewDB(t)
//	    // ...
//	}
//
// # NATS
//
// NewNATSServer starts an embedded nats-server on a random loopback port
// for forwarder tests. No external broker or Docker is required.
//
// # Capture server
//
// CaptureServer is an httptest server that records every request, used to
// observe remote backup forwards.
package testinfra
