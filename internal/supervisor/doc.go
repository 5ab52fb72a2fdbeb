// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package supervisor runs the engine's long-lived services under suture v4.

The tree has three layers so a failure in one does not take down the
others:

	agenda
	├── storage-layer
	│   ├── backup-scheduler
	│   └── forward-retry-loop   (when forwarding is configured)
	├── events-layer
	│   ├── change-observer
	│   └── websocket-hub
	└── api-layer
	    └── http-server          (when the server is enabled)

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog on the slog handler from internal/logging, so
they share the zerolog output of the rest of the engine.

Usage:

	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	eng.Register(tree)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
