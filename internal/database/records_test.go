// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/agenda/internal/models"
)

func TestJobs_CRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := newJob("Jardin", "Ana Perez")
	job.Ubicacion.Coordenadas = &models.Coordenadas{Lat: -34.6, Lng: -58.4}
	job.Costo.ValorHora = 1000
	if err := db.InsertJob(ctx, job); err != nil {
		t.Fatalf("InsertJob: %v", err)
	}

	got, err := db.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Nombre != "Jardin" || got.Costo.ValorHora != 1000 || got.Costo.Moneda != "ARS" {
		t.Errorf("GetJob = %+v", got)
	}
	if got.Ubicacion.Coordenadas == nil || got.Ubicacion.Coordenadas.Lat != -34.6 {
		t.Errorf("Coordenadas = %+v", got.Ubicacion.Coordenadas)
	}
	if !got.FechaCreacion.Equal(job.FechaCreacion) {
		t.Errorf("FechaCreacion = %v, want %v", got.FechaCreacion, job.FechaCreacion)
	}

	got.Estado = models.JobInactivo
	got.FechaActualizacion = got.FechaActualizacion.Add(time.Second)
	if err := db.UpdateJob(ctx, got); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	counts, err := db.CountJobsByEstado(ctx)
	if err != nil {
		t.Fatalf("CountJobsByEstado: %v", err)
	}
	if counts["inactivo"] != 1 || counts["activo"] != 0 {
		t.Errorf("counts = %v", counts)
	}

	deleted, err := db.DeleteJob(ctx, job.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteJob = %v, %v", deleted, err)
	}
	deleted, err = db.DeleteJob(ctx, job.ID)
	if err != nil || deleted {
		t.Errorf("second DeleteJob = %v, %v; want false, nil", deleted, err)
	}

	_, err = db.GetJob(ctx, job.ID)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetJob after delete err = %v", err)
	}
	if err := db.UpdateJob(ctx, got); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UpdateJob missing err = %v", err)
	}
}

func TestListJobs_Filter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := newJob("A", "Ana Perez")
	b := newJob("B", "Bruno")
	b.Estado = models.JobArchivado
	c := newJob("C", "ana maria")
	for _, j := range []*models.Job{a, b, c} {
		if err := db.InsertJob(ctx, j); err != nil {
			t.Fatalf("InsertJob: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter models.JobFilter
		want   []string
	}{
		{"all", models.JobFilter{}, []string{"A", "B", "C"}},
		{"estado", models.JobFilter{Estado: models.JobArchivado}, []string{"B"}},
		{"cliente substring ignores case", models.JobFilter{Cliente: "ANA"}, []string{"A", "C"}},
		{"combined", models.JobFilter{Estado: models.JobActivo, Cliente: "maria"}, []string{"C"}},
		{"no match", models.JobFilter{Cliente: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := db.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			var names []string
			for _, j := range jobs {
				names = append(names, j.Nombre)
			}
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestTasks_FiltersAndSummaries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job := newJob("J", "c")
	if err := db.InsertJob(ctx, job); err != nil {
		t.Fatalf("InsertJob: %v", err)
	}

	v1, v2 := 500.0, 250.0
	done := newTask(job.ID, "done", "2026-05-01")
	done.Completada = true
	done.Estado = models.TaskRealizadaCobrada
	done.Costo.Valor = &v1
	open := newTask(job.ID, "open", "2026-05-01")
	open.Costo.Valor = &v2
	open.Prioridad = models.PrioridadAlta
	later := newTask(job.ID, "later", "2026-05-02")
	for _, task := range []*models.Task{done, open, later} {
		if err := db.InsertTask(ctx, task); err != nil {
			t.Fatalf("InsertTask: %v", err)
		}
	}

	yes := true
	tests := []struct {
		name   string
		filter models.TaskFilter
		want   int
	}{
		{"all", models.TaskFilter{}, 3},
		{"by job", models.TaskFilter{TrabajoID: job.ID}, 3},
		{"by fecha", models.TaskFilter{Fecha: "2026-05-01"}, 2},
		{"completada", models.TaskFilter{Completada: &yes}, 1},
		{"prioridad", models.TaskFilter{Prioridad: models.PrioridadAlta}, 1},
		{"estado", models.TaskFilter{Estado: models.TaskPendiente}, 2},
		{"unknown job", models.TaskFilter{TrabajoID: "nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := db.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("got %d tasks, want %d", len(tasks), tt.want)
			}
		})
	}

	sum, err := db.SummarizeDay(ctx, "2026-05-01")
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}
	if sum.Completed != 1 || sum.Revenue != 750 {
		t.Errorf("SummarizeDay = %+v, want {1 750}", sum)
	}

	empty, err := db.SummarizeDay(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("SummarizeDay empty: %v", err)
	}
	if empty.Completed != 0 || empty.Revenue != 0 {
		t.Errorf("empty day = %+v", empty)
	}

	pending, err := db.CountPendingTasks(ctx)
	if err != nil || pending != 2 {
		t.Errorf("CountPendingTasks = %d, %v", pending, err)
	}

	size, err := db.RecordsSize(ctx)
	if err != nil || size <= 0 {
		t.Errorf("RecordsSize = %d, %v", size, err)
	}

	// clearing an explicit value must null the typed column as well
	open.Costo.Valor = nil
	if err := db.UpdateTask(ctx, open); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	sum, _ = db.SummarizeDay(ctx, "2026-05-01")
	if sum.Revenue != 500 {
		t.Errorf("revenue after clearing valor = %v, want 500", sum.Revenue)
	}
}

func TestAudit_AppendAndQuery(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	entries := []*models.AuditEntry{
		{Operation: models.OpCreate, Table: models.TableJobs, RecordID: "a", NewValue: []byte(`{"id":"a"}`), Timestamp: base},
		{Operation: models.OpUpdate, Table: models.TableJobs, RecordID: "a", OldValue: []byte(`{"id":"a"}`), NewValue: []byte(`{"id":"a","v":2}`), Timestamp: base.Add(time.Hour)},
		{Operation: models.OpDelete, Table: models.TableJobs, RecordID: "a", OldValue: []byte(`{"id":"a","v":2}`), Timestamp: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		e.Origin = "test-device"
		if err := db.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}
	if entries[0].ID >= entries[1].ID || entries[1].ID >= entries[2].ID {
		t.Errorf("ids not increasing: %d %d %d", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	got, err := db.ListAudit(ctx, base.Add(30*time.Minute), time.Time{})
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	if len(got) != 2 || got[0].Operation != models.OpUpdate || got[1].Operation != models.OpDelete {
		t.Fatalf("ListAudit = %+v", got)
	}
	if got[1].NewValue != nil {
		t.Errorf("DELETE NewValue = %s, want nil", got[1].NewValue)
	}
	if got[0].Origin != "test-device" {
		t.Errorf("Origin = %q", got[0].Origin)
	}

	latest, err := db.LatestAudit(ctx)
	if err != nil || latest == nil || latest.Operation != models.OpDelete {
		t.Errorf("LatestAudit = %+v, %v", latest, err)
	}
	if n, _ := db.CountAudit(ctx); n != 3 {
		t.Errorf("CountAudit = %d", n)
	}
}

func TestLatestAudit_Empty(t *testing.T) {
	db := setupTestDB(t)
	latest, err := db.LatestAudit(context.Background())
	if err != nil || latest != nil {
		t.Errorf("LatestAudit on empty journal = %+v, %v", latest, err)
	}
}

func TestStatistics_AppendOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		s := &models.StatisticsSnapshot{
			Date:      "2026-01-10",
			Kind:      models.StatisticsKindDaily,
			TotalJobs: i,
			Timestamp: time.Now(),
		}
		if err := db.AppendStatistics(ctx, s); err != nil {
			t.Fatalf("AppendStatistics: %v", err)
		}
	}

	all, err := db.ListStatistics(ctx, 0)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListStatistics = %d, %v", len(all), err)
	}
	last2, err := db.ListStatistics(ctx, 2)
	if err != nil || len(last2) != 2 {
		t.Fatalf("ListStatistics(2) = %d, %v", len(last2), err)
	}
	if last2[0].TotalJobs != 2 || last2[1].TotalJobs != 3 {
		t.Errorf("last two = %d, %d; want 2, 3", last2[0].TotalJobs, last2[1].TotalJobs)
	}

	if err := db.DeleteAllStatistics(ctx); err != nil {
		t.Fatalf("DeleteAllStatistics: %v", err)
	}
	if n, _ := db.CountStatistics(ctx); n != 0 {
		t.Errorf("CountStatistics = %d", n)
	}
}

func TestBackups_Eviction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		b := &models.BackupRecord{
			Date:      base.Add(time.Duration(i) * time.Hour),
			Kind:      models.BackupAuto,
			Payload:   []byte(`{"i":` + formatID(int64(i)) + `}`),
			SizeBytes: 7,
		}
		if err := db.InsertBackup(ctx, b); err != nil {
			t.Fatalf("InsertBackup: %v", err)
		}
	}

	evicted, err := db.EvictBackups(ctx, 5)
	if err != nil {
		t.Fatalf("EvictBackups: %v", err)
	}
	if evicted != 2 {
		t.Errorf("evicted = %d, want 2", evicted)
	}

	list, err := db.ListBackups(ctx)
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("kept %d, want 5", len(list))
	}
	if !list[0].Date.Equal(base.Add(6*time.Hour)) || !list[4].Date.Equal(base.Add(2*time.Hour)) {
		t.Errorf("kept range %v..%v", list[4].Date, list[0].Date)
	}

	full, err := db.GetBackup(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("GetBackup: %v", err)
	}
	if string(full.Payload) != `{"i":6}` {
		t.Errorf("payload = %s", full.Payload)
	}

	if err := db.MarkBackupForwarded(ctx, full.ID); err != nil {
		t.Fatalf("MarkBackupForwarded: %v", err)
	}
	full, _ = db.GetBackup(ctx, full.ID)
	if !full.Forwarded {
		t.Error("Forwarded = false after mark")
	}

	latest, err := db.LatestBackupDate(ctx)
	if err != nil || latest == nil || !latest.Equal(base.Add(6*time.Hour)) {
		t.Errorf("LatestBackupDate = %v, %v", latest, err)
	}

	if _, err := db.GetBackup(ctx, 9999); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetBackup missing err = %v", err)
	}
}

func TestConfigEntries_Upsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertConfig(ctx, &models.ConfigEntry{Key: "compressBackups", Value: []byte(`true`)}); err != nil {
		t.Fatalf("UpsertConfig: %v", err)
	}
	if err := db.UpsertConfig(ctx, &models.ConfigEntry{Key: "compressBackups", Value: []byte(`false`)}); err != nil {
		t.Fatalf("UpsertConfig replace: %v", err)
	}
	if err := db.UpsertConfig(ctx, &models.ConfigEntry{Key: "theme", Value: []byte(`{"dark":true}`)}); err != nil {
		t.Fatalf("UpsertConfig: %v", err)
	}

	e, err := db.GetConfig(ctx, "compressBackups")
	if err != nil || string(e.Value) != "false" {
		t.Errorf("GetConfig = %+v, %v", e, err)
	}

	all, err := db.ListConfig(ctx)
	if err != nil || len(all) != 2 || all[0].Key != "compressBackups" {
		t.Errorf("ListConfig = %+v, %v", all, err)
	}

	if _, err := db.GetConfig(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetConfig missing err = %v", err)
	}
}
