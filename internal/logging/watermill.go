// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	logger    zerolog.Logger
	infoLevel zerolog.Level
}

// NewWatermillLogger wraps the global logger, tagged with component.
func NewWatermillLogger(component string) *WatermillLogger {
	return &WatermillLogger{logger: WithComponent(component), infoLevel: zerolog.InfoLevel}
}

// NewQuietWatermillLogger is NewWatermillLogger with Watermill's info
// lines written at debug. The in-process pub/sub reports every message
// published without subscribers at info.
func NewQuietWatermillLogger(component string) *WatermillLogger {
	return &WatermillLogger{logger: WithComponent(component), infoLevel: zerolog.DebugLevel}
}

// Error implements watermill.LoggerAdapter.
func (w *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// Info implements watermill.LoggerAdapter.
func (w *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	w.logger.WithLevel(w.infoLevel).Fields(map[string]interface{}(fields)).Msg(msg)
}

// Debug implements watermill.LoggerAdapter.
func (w *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Trace implements watermill.LoggerAdapter. Watermill is chatty at trace
// level, so these lines only show up when the global level is trace.
func (w *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

// With implements watermill.LoggerAdapter.
func (w *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{
		logger:    w.logger.With().Fields(map[string]interface{}(fields)).Logger(),
		infoLevel: w.infoLevel,
	}
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)
