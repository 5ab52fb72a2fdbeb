// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package gateway

import (
	"context"
	"time"

	"github.com/tomtom215/agenda/internal/database"
	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/models"
)

// CreateJob validates and stores a new Job. The id and both timestamps are
// assigned here; any values supplied by the caller are replaced.
func (s *Service) CreateJob(ctx context.Context, in *models.Job) (out *models.Job, err error) {
	defer observe("create", models.TableJobs, time.Now(), &err)
	if in == nil {
		return nil, &models.ValidationError{Reason: "job is required"}
	}

	job := *in
	job.ApplyDefaults()
	if err := validate("job", &job); err != nil {
		return nil, err
	}
	if job.ID, err = s.generateID(); err != nil {
		return nil, err
	}
	job.FechaCreacion = s.timestamp()
	job.FechaActualizacion = job.FechaCreacion

	defer s.write()()
	if err := s.db.InsertJob(ctx, &job); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().Str("job_id", job.ID).Msg("Job created")
	s.committed(ctx, change{op: models.OpCreate, table: models.TableJobs, id: job.ID, newValue: &job})
	return &job, nil
}

// GetJob returns the Job with id or a *models.NotFoundError.
func (s *Service) GetJob(ctx context.Context, id string) (job *models.Job, err error) {
	defer observe("get", models.TableJobs, time.Now(), &err)
	return s.db.GetJob(ctx, id)
}

// ListJobs returns the Jobs matching filter, oldest first.
func (s *Service) ListJobs(ctx context.Context, filter models.JobFilter) (jobs []*models.Job, err error) {
	defer observe("list", models.TableJobs, time.Now(), &err)
	return s.db.ListJobs(ctx, filter)
}

// UpdateJob merges patch into the stored Job. Nested sub-patches only touch
// the fields they set. An empty patch returns the stored Job unchanged.
func (s *Service) UpdateJob(ctx context.Context, id string, patch models.JobPatch) (out *models.Job, err error) {
	defer observe("update", models.TableJobs, time.Now(), &err)
	if err := validate("job patch", &patch); err != nil {
		return nil, err
	}

	defer s.write()()
	var before, after *models.Job
	err = s.db.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetJob(ctx, id)
		if err != nil {
			return err
		}
		before = current
		if patch.IsEmpty() {
			after = current
			return nil
		}

		next := *current
		patch.Apply(&next)
		if err := validate("job", &next); err != nil {
			return err
		}
		next.ID = current.ID
		next.FechaCreacion = current.FechaCreacion
		next.FechaActualizacion = s.timestamp()
		if err := q.UpdateJob(ctx, &next); err != nil {
			return err
		}
		after = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	if after == before {
		return after, nil
	}

	logging.Ctx(ctx).Debug().Str("job_id", id).Msg("Job updated")
	s.committed(ctx, change{op: models.OpUpdate, table: models.TableJobs, id: id, oldValue: before, newValue: after})
	return after, nil
}

// DeleteJob removes a Job together with its Tasks. Each Task is audited
// before the Job. A missing id is not an error; the result reports whether
// anything was deleted.
func (s *Service) DeleteJob(ctx context.Context, id string) (deleted bool, err error) {
	defer observe("delete", models.TableJobs, time.Now(), &err)

	defer s.write()()
	var (
		job   *models.Job
		tasks []*models.Task
	)
	err = s.db.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetJob(ctx, id)
		if err != nil {
			return err
		}
		if tasks, err = q.ListTasksByJob(ctx, id); err != nil {
			return err
		}
		for _, t := range tasks {
			if _, err := q.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
		}
		if _, err := q.DeleteJob(ctx, id); err != nil {
			return err
		}
		job = current
		return nil
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	changes := make([]change, 0, len(tasks)+1)
	for _, t := range tasks {
		changes = append(changes, change{op: models.OpDelete, table: models.TableTasks, id: t.ID, oldValue: t})
	}
	changes = append(changes, change{op: models.OpDelete, table: models.TableJobs, id: id, oldValue: job})

	logging.Ctx(ctx).Debug().Str("job_id", id).Int("tasks", len(tasks)).Msg("Job deleted")
	s.committed(ctx, changes...)
	return true, nil
}
