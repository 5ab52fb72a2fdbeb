// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/validation"
)

// classify maps an engine error to a status, an error code and optional
// details.
func classify(err error) (status int, code string, details any) {
	var verrs *validation.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, ErrCodeValidationFailed, verrs.Fields
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, nil
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrCompression):
		return http.StatusBadRequest, ErrCodeValidationFailed, nil
	case errors.Is(err, backup.ErrBackupInProgress):
		return http.StatusConflict, ErrCodeConflict, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrCodeUnavailable, nil
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, nil
	}
}
