// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package database

import (
	"context"
	"strings"

	"github.com/tomtom215/agenda/internal/models"
)

// InsertTask stores a new task. The job reference is checked by the caller.
func (q *Queries) InsertTask(ctx context.Context, t *models.Task) error {
	doc, err := encodeDoc(t)
	if err != nil {
		return err
	}
	_, err = q.x.ExecContext(ctx, `
		INSERT INTO tasks (id, trabajo_id, titulo, estado, prioridad, completada,
			fecha_planificada, costo_valor, doc, fecha_creacion, fecha_actualizacion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TrabajoID, t.Titulo, string(t.Estado), string(t.Prioridad), t.Completada,
		t.Planificacion.FechaPlanificada, costoValor(t), doc,
		t.FechaCreacion.UTC(), t.FechaActualizacion.UTC())
	return models.WrapIO("insert task", err)
}

func costoValor(t *models.Task) any {
	if t.Costo.Valor == nil {
		return nil
	}
	return *t.Costo.Valor
}

// GetTask returns the task or a *models.NotFoundError.
func (q *Queries) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var doc string
	err := q.x.QueryRowContext(ctx, `SELECT doc FROM tasks WHERE id = ?`, id).Scan(&doc)
	if isNoRows(err) {
		return nil, &models.NotFoundError{Table: models.TableTasks, ID: id}
	}
	if err != nil {
		return nil, models.WrapIO("get task", err)
	}
	var t models.Task
	if err := scanDoc(doc, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks matching f ordered by planned date and time.
func (q *Queries) ListTasks(ctx context.Context, f models.TaskFilter) ([]*models.Task, error) {
	var (
		where []string
		args  []any
	)
	if f.TrabajoID != "" {
		where = append(where, "trabajo_id = ?")
		args = append(args, f.TrabajoID)
	}
	if f.Estado != "" {
		where = append(where, "estado = ?")
		args = append(args, string(f.Estado))
	}
	if f.Prioridad != "" {
		where = append(where, "prioridad = ?")
		args = append(args, string(f.Prioridad))
	}
	if f.Completada != nil {
		where = append(where, "completada = ?")
		args = append(args, *f.Completada)
	}
	if f.Fecha != "" {
		where = append(where, "fecha_planificada = ?")
		args = append(args, f.Fecha)
	}

	query := `SELECT doc FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY fecha_planificada, fecha_creacion, id`

	rows, err := q.x.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.WrapIO("list tasks", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, models.WrapIO("list tasks", err)
		}
		var t models.Task
		if err := scanDoc(doc, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list tasks", err)
	}
	return tasks, nil
}

// ListTasksByJob returns every task of one job.
func (q *Queries) ListTasksByJob(ctx context.Context, jobID string) ([]*models.Task, error) {
	return q.ListTasks(ctx, models.TaskFilter{TrabajoID: jobID})
}

// UpdateTask overwrites the stored task with t.
func (q *Queries) UpdateTask(ctx context.Context, t *models.Task) error {
	doc, err := encodeDoc(t)
	if err != nil {
		return err
	}
	res, err := q.x.ExecContext(ctx, `
		UPDATE tasks SET trabajo_id = ?, titulo = ?, estado = ?, prioridad = ?, completada = ?,
			fecha_planificada = ?, costo_valor = ?, doc = ?, fecha_actualizacion = ?
		WHERE id = ?`,
		t.TrabajoID, t.Titulo, string(t.Estado), string(t.Prioridad), t.Completada,
		t.Planificacion.FechaPlanificada, costoValor(t), doc, t.FechaActualizacion.UTC(), t.ID)
	if err != nil {
		return models.WrapIO("update task", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &models.NotFoundError{Table: models.TableTasks, ID: t.ID}
	}
	return nil
}

// DeleteTask removes one task row.
func (q *Queries) DeleteTask(ctx context.Context, id string) (bool, error) {
	res, err := q.x.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, models.WrapIO("delete task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.WrapIO("delete task", err)
	}
	return n > 0, nil
}

// DeleteAllTasks empties the tasks table.
func (q *Queries) DeleteAllTasks(ctx context.Context) error {
	_, err := q.x.ExecContext(ctx, `DELETE FROM tasks`)
	return models.WrapIO("clear tasks", err)
}

// CountTasks returns the total number of tasks.
func (q *Queries) CountTasks(ctx context.Context) (int, error) {
	return q.count(ctx, "count tasks", `SELECT COUNT(*) FROM tasks`)
}

// CountPendingTasks counts tasks not marked completada.
func (q *Queries) CountPendingTasks(ctx context.Context) (int, error) {
	return q.count(ctx, "count pending tasks", `SELECT COUNT(*) FROM tasks WHERE NOT completada`)
}

// CountTasksByEstado groups tasks by state.
func (q *Queries) CountTasksByEstado(ctx context.Context) (map[string]int, error) {
	return q.countBy(ctx, "count tasks by estado", `SELECT estado, COUNT(*) FROM tasks GROUP BY estado`)
}

// CountTasksByPrioridad groups tasks by priority.
func (q *Queries) CountTasksByPrioridad(ctx context.Context) (map[string]int, error) {
	return q.countBy(ctx, "count tasks by prioridad", `SELECT prioridad, COUNT(*) FROM tasks GROUP BY prioridad`)
}

// DaySummary is the per-date rollup used by the statistics snapshot.
type DaySummary struct {
	Completed int
	Revenue   float64
}

// SummarizeDay counts completed tasks planned for date and sums the
// explicit costo.valor of every task planned for it.
func (q *Queries) SummarizeDay(ctx context.Context, date string) (DaySummary, error) {
	var (
		completed int64
		revenue   float64
	)
	err := q.x.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE completada), COALESCE(SUM(costo_valor), 0)
		FROM tasks WHERE fecha_planificada = ?`, date).Scan(&completed, &revenue)
	if err != nil {
		return DaySummary{}, models.WrapIO("summarize day", err)
	}
	return DaySummary{Completed: int(completed), Revenue: revenue}, nil
}

// RecordsSize returns the byte length of the stored job and task
// documents, used as a storage-size estimate.
func (q *Queries) RecordsSize(ctx context.Context) (int64, error) {
	var size int64
	err := q.x.QueryRowContext(ctx, `
		SELECT CAST(COALESCE((SELECT SUM(strlen(doc)) FROM jobs), 0)
		          + COALESCE((SELECT SUM(strlen(doc)) FROM tasks), 0) AS BIGINT)`).Scan(&size)
	if err != nil {
		return 0, models.WrapIO("estimate size", err)
	}
	return size, nil
}
