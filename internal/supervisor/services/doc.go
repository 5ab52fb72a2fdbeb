// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

// Package services adapts engine components to suture.Service.
//
// The backup scheduler, the forward retry loop and the WebSocket hub
// implement Serve and String themselves and go into the tree as they are.
// HTTPServerService covers *http.Server, whose blocking ListenAndServe
// does not take a context, and NamedService labels components that only
// implement Serve.
package services
