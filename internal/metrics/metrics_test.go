// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/tomtom215/agenda/internal/models"
)

func TestResultLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "success"},
		{"not found", &models.NotFoundError{Table: "trabajos", ID: "x"}, "not_found"},
		{"wrapped validation", fmt.Errorf("create: %w", &models.ValidationError{Reason: "bad"}), "validation"},
		{"compression", &models.CompressionError{Op: "inflate", Err: errors.New("eof")}, "compression"},
		{"schema", &models.SchemaError{Step: "x", Err: errors.New("y")}, "schema"},
		{"io", &models.IOError{Op: "write", Err: errors.New("disk")}, "io"},
		{"other", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resultLabel(tt.err); got != tt.want {
				t.Errorf("resultLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordGatewayOperation(t *testing.T) {
	before := testutil.ToFloat64(GatewayOperations.WithLabelValues("create", "tareas", "not_found"))
	RecordGatewayOperation("create", "tareas", time.Millisecond, &models.NotFoundError{Table: "trabajos", ID: "x"})
	after := testutil.ToFloat64(GatewayOperations.WithLabelValues("create", "tareas", "not_found"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestRecordBackup(t *testing.T) {
	var m dto.Metric
	if err := BackupDuration.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	samples := m.GetHistogram().GetSampleCount()

	RecordBackup("manual", 20*time.Millisecond, 4096, nil)

	if got := testutil.ToFloat64(BackupSizeBytes); got != 4096 {
		t.Errorf("BackupSizeBytes = %v, want 4096", got)
	}
	if err := BackupDuration.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetHistogram().GetSampleCount(); got != samples+1 {
		t.Errorf("histogram samples = %d, want %d", got, samples+1)
	}

	// a failed backup leaves the size gauge alone
	RecordBackup("auto", time.Millisecond, 1, errors.New("boom"))
	if got := testutil.ToFloat64(BackupSizeBytes); got != 4096 {
		t.Errorf("BackupSizeBytes after failure = %v, want 4096", got)
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("http-forward", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("http-forward")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("http-forward", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("active = %v, want %v", got, start+1)
	}
	TrackActiveRequest(false)
}
