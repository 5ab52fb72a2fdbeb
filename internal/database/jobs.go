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

// InsertJob stores a new job. The caller assigns id and timestamps.
func (q *Queries) InsertJob(ctx context.Context, j *models.Job) error {
	doc, err := encodeDoc(j)
	if err != nil {
		return err
	}
	_, err = q.x.ExecContext(ctx, `
		INSERT INTO jobs (id, nombre, cliente, estado, doc, fecha_creacion, fecha_actualizacion)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Nombre, j.Cliente, string(j.Estado), doc,
		j.FechaCreacion.UTC(), j.FechaActualizacion.UTC())
	return models.WrapIO("insert job", err)
}

// GetJob returns the job or a *models.NotFoundError.
func (q *Queries) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var doc string
	err := q.x.QueryRowContext(ctx, `SELECT doc FROM jobs WHERE id = ?`, id).Scan(&doc)
	if isNoRows(err) {
		return nil, &models.NotFoundError{Table: models.TableJobs, ID: id}
	}
	if err != nil {
		return nil, models.WrapIO("get job", err)
	}
	var j models.Job
	if err := scanDoc(doc, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// JobExists reports whether id names a stored job.
func (q *Queries) JobExists(ctx context.Context, id string) (bool, error) {
	n, err := q.count(ctx, "check job", `SELECT COUNT(*) FROM jobs WHERE id = ?`, id)
	return n > 0, err
}

// ListJobs returns jobs matching f, oldest first.
func (q *Queries) ListJobs(ctx context.Context, f models.JobFilter) ([]*models.Job, error) {
	var (
		where []string
		args  []any
	)
	if f.Estado != "" {
		where = append(where, "estado = ?")
		args = append(args, string(f.Estado))
	}
	if f.Cliente != "" {
		where = append(where, "contains(lower(cliente), lower(?))")
		args = append(args, f.Cliente)
	}

	query := `SELECT doc FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY fecha_creacion, id`

	rows, err := q.x.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.WrapIO("list jobs", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, models.WrapIO("list jobs", err)
		}
		var j models.Job
		if err := scanDoc(doc, &j); err != nil {
			return nil, err
		}
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, models.WrapIO("list jobs", err)
	}
	return jobs, nil
}

// UpdateJob overwrites the stored job with j.
func (q *Queries) UpdateJob(ctx context.Context, j *models.Job) error {
	doc, err := encodeDoc(j)
	if err != nil {
		return err
	}
	res, err := q.x.ExecContext(ctx, `
		UPDATE jobs SET nombre = ?, cliente = ?, estado = ?, doc = ?, fecha_actualizacion = ?
		WHERE id = ?`,
		j.Nombre, j.Cliente, string(j.Estado), doc, j.FechaActualizacion.UTC(), j.ID)
	if err != nil {
		return models.WrapIO("update job", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &models.NotFoundError{Table: models.TableJobs, ID: j.ID}
	}
	return nil
}

// DeleteJob removes one job row. Tasks are not touched.
func (q *Queries) DeleteJob(ctx context.Context, id string) (bool, error) {
	res, err := q.x.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return false, models.WrapIO("delete job", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, models.WrapIO("delete job", err)
	}
	return n > 0, nil
}

// DeleteAllJobs empties the jobs table.
func (q *Queries) DeleteAllJobs(ctx context.Context) error {
	_, err := q.x.ExecContext(ctx, `DELETE FROM jobs`)
	return models.WrapIO("clear jobs", err)
}

// CountJobs returns the total number of jobs.
func (q *Queries) CountJobs(ctx context.Context) (int, error) {
	return q.count(ctx, "count jobs", `SELECT COUNT(*) FROM jobs`)
}

// CountActiveJobs returns the number of jobs in state activo.
func (q *Queries) CountActiveJobs(ctx context.Context) (int, error) {
	return q.count(ctx, "count active jobs", `SELECT COUNT(*) FROM jobs WHERE estado = ?`, string(models.JobActivo))
}

// CountJobsByEstado groups jobs by state.
func (q *Queries) CountJobsByEstado(ctx context.Context) (map[string]int, error) {
	return q.countBy(ctx, "count jobs by estado", `SELECT estado, COUNT(*) FROM jobs GROUP BY estado`)
}
