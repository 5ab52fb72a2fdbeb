// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package events carries committed mutations out of the gateway.

The Feed is an in-process Watermill pub/sub (gochannel). The gateway
publishes one ChangeEvent per committed record change; publishing is
best-effort and never fails the mutation. Subscribers such as the
Observer and the WebSocket hub read typed events from Subscribe.

The Observer is a debugging aid. It logs each event at debug level and
can produce a Snapshot of the store through the gateway's read
operations. Nothing in the engine depends on it.
*/
package events
