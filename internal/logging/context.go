// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// operationIDKey ties together the log lines of one engine operation
	// (a gateway call, a backup run, a restore).
	operationIDKey contextKey = "operation_id"

	// requestIDKey carries the HTTP request id set by the API middleware.
	requestIDKey contextKey = "request_id"
)

// GenerateOperationID returns a short id for readability in logs.
func GenerateOperationID() string {
	return uuid.New().String()[:8]
}

// ContextWithOperationID returns a copy of ctx carrying id.
func ContextWithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey, id)
}

// ContextWithNewOperationID tags ctx with a fresh operation id, keeping an
// existing one if present.
func ContextWithNewOperationID(ctx context.Context) context.Context {
	if OperationIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithOperationID(ctx, GenerateOperationID())
}

// OperationIDFromContext returns the operation id or "".
func OperationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a copy of ctx carrying the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger enriched with the ids found in ctx.
//
//	logging.Ctx(ctx).Info().Str("task_id", id).Msg("Task updated")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := With()
	if id := OperationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("operation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	l := logCtx.Logger()
	return &l
}
