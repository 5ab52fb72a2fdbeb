// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/backup"
	"github.com/tomtom215/agenda/internal/models"
	"github.com/tomtom215/agenda/internal/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"field errors", &validation.Errors{Fields: []validation.FieldError{{Field: "Nombre", Tag: "required"}}}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"not found", fmt.Errorf("get: %w", &models.NotFoundError{Table: models.TableJobs, ID: "x"}), http.StatusNotFound, ErrCodeNotFound},
		{"validation", &models.ValidationError{Reason: "bad"}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"compression", &models.CompressionError{Op: "inflate", Err: errors.New("corrupt")}, http.StatusBadRequest, ErrCodeValidationFailed},
		{"busy", backup.ErrBackupInProgress, http.StatusConflict, ErrCodeConflict},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, ErrCodeUnavailable},
		{"io", &models.IOError{Op: "write", Err: errors.New("disk full")}, http.StatusInternalServerError, ErrCodeInternalError},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("classify = %d %s, want %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestFailure_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	NewResponseWriter(rec, req).Failure(errors.New("dsn=secret"))

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusInternalServerError || env.Error == nil || env.Error.Message != "internal error" {
		t.Errorf("Failure = %d %+v", rec.Code, env.Error)
	}
}

func TestFailure_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	NewResponseWriter(rec, req).Failure(&validation.Errors{Fields: []validation.FieldError{{Field: "Nombre", Tag: "required"}}})

	var env struct {
		Error struct {
			Details []validation.FieldError `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Error.Details) != 1 || env.Error.Details[0].Field != "Nombre" {
		t.Errorf("details = %+v", env.Error.Details)
	}
}
