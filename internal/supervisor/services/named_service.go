// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package services

import "context"

// Server is anything with a suture-style Serve method.
type Server interface {
	Serve(ctx context.Context) error
}

// NamedService gives a Server a name for supervisor logs. Components that
// already implement fmt.Stringer can be added to the tree directly.
//
//	tree.AddEventsService(services.NewNamedService("change-observer", observer))
type NamedService struct {
	inner Server
	name  string
}

// NewNamedService wraps inner under name.
func NewNamedService(name string, inner Server) *NamedService {
	return &NamedService{inner: inner, name: name}
}

// Serve delegates to the wrapped component.
func (n *NamedService) Serve(ctx context.Context) error {
	return n.inner.Serve(ctx)
}

// String implements fmt.Stringer.
func (n *NamedService) String() string {
	return n.name
}
