// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package websocket streams committed changes to connected UI clients.

The Hub subscribes to the events.Feed and fans every ChangeEvent out to
its clients as a "change" message:

	{"type": "change", "data": {"operation": "UPDATE", "table": "tareas", "recordId": "...", "at": "..."}}

	┌────────────┐      ┌──────────┐
	│ events.Feed│ ───▶ │   Hub    │
	└────────────┘      └────┬─────┘
	                ┌────────┼────────┐
	                │        │        │
	             Client1  Client2  Client3

Each client has two goroutines:
  - readPump: reads from the socket and answers "ping" with "pong"
  - writePump: writes queued messages and keeps the connection alive

A client whose send buffer is full is dropped rather than slowing the hub.
The stream is informational only: clients re-read through the HTTP API.
*/
package websocket
