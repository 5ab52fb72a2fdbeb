// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package engine assembles one engine instance from configuration.
//
// New is the only initialization path. It opens the store, runs schema
// migrations and wires the components in dependency order:
//
//	database -> audit journal, statistics aggregator, change feed
//	         -> gateway -> forwarder, spool, dispatcher
//	         -> backup engine -> scheduler, retry loop
//	         -> change observer, WebSocket hub, HTTP router
//
// Background components do not start until Register adds them to a
// supervisor tree. Shutdown closes everything New opened, in reverse.
// There is no package-level instance.
package engine
