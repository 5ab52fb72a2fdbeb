// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/agenda/internal/config"
	"github.com/tomtom215/agenda/internal/database"
)

// dbSemaphore is held for the whole lifetime of each test database.
var dbSemaphore = make(chan struct{}, 1)

// NewDB returns a migrated in-memory database closed on test cleanup.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	dbSemaphore <- struct{}{}
	t.Cleanup(func() { <-dbSemaphore })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:      database.MemoryPath,
		MaxMemory: "256MB",
		Threads:   1,
	}, database.LatestSchemaVersion)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close test database: %v", err)
		}
	})
	return db
}
