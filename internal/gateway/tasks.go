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
	"github.com/tomtom215/agenda/internal/stats"
)

// CreateTask validates and stores a new Task. A TrabajoID that names no Job
// is a *models.NotFoundError, returned before anything is written.
func (s *Service) CreateTask(ctx context.Context, in *models.Task) (out *models.Task, err error) {
	defer observe("create", models.TableTasks, time.Now(), &err)
	if in == nil {
		return nil, &models.ValidationError{Reason: "task is required"}
	}

	task := *in
	task.ApplyDefaults()
	if task.Planificacion.FechaPlanificada == "" {
		task.Planificacion.FechaPlanificada = s.now().Format(stats.DateLayout)
	}
	if err := validate("task", &task); err != nil {
		return nil, err
	}
	if task.ID, err = s.generateID(); err != nil {
		return nil, err
	}
	task.FechaCreacion = s.timestamp()
	task.FechaActualizacion = task.FechaCreacion

	defer s.write()()
	err = s.db.WithTx(ctx, func(q *database.Queries) error {
		if err := requireJob(ctx, q, task.TrabajoID); err != nil {
			return err
		}
		return q.InsertTask(ctx, &task)
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().Str("task_id", task.ID).Str("job_id", task.TrabajoID).Msg("Task created")
	s.committed(ctx, change{op: models.OpCreate, table: models.TableTasks, id: task.ID, newValue: &task})
	return &task, nil
}

// GetTask returns the Task with id or a *models.NotFoundError.
func (s *Service) GetTask(ctx context.Context, id string) (task *models.Task, err error) {
	defer observe("get", models.TableTasks, time.Now(), &err)
	return s.db.GetTask(ctx, id)
}

// ListTasks returns the Tasks matching filter ordered by planned date.
func (s *Service) ListTasks(ctx context.Context, filter models.TaskFilter) (tasks []*models.Task, err error) {
	defer observe("list", models.TableTasks, time.Now(), &err)
	return s.db.ListTasks(ctx, filter)
}

// UpdateTask merges patch into the stored Task. Moving a Task to another
// Job requires that Job to exist.
func (s *Service) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (out *models.Task, err error) {
	defer observe("update", models.TableTasks, time.Now(), &err)
	if err := validate("task patch", &patch); err != nil {
		return nil, err
	}
	return s.updateTask(ctx, id, patch.IsEmpty(), patch.Apply)
}

// SetTaskStatus changes estado and keeps completada consistent with it:
// realizada_* and cancelada complete the Task, pendiente reopens it.
func (s *Service) SetTaskStatus(ctx context.Context, id string, estado models.TaskEstado) (out *models.Task, err error) {
	defer observe("set_status", models.TableTasks, time.Now(), &err)
	switch estado {
	case models.TaskPendiente, models.TaskRealizadaCobrada, models.TaskRealizadaPendientePago, models.TaskCancelada:
	default:
		return nil, &models.ValidationError{Reason: "unknown task estado " + string(estado)}
	}
	return s.updateTask(ctx, id, false, func(t *models.Task) {
		t.Estado = estado
		t.Completada = estado.Completes()
	})
}

func (s *Service) updateTask(ctx context.Context, id string, noop bool, apply func(*models.Task)) (*models.Task, error) {
	defer s.write()()
	var before, after *models.Task
	err := s.db.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetTask(ctx, id)
		if err != nil {
			return err
		}
		before = current
		if noop {
			after = current
			return nil
		}

		next := *current
		apply(&next)
		if err := validate("task", &next); err != nil {
			return err
		}
		if next.TrabajoID != current.TrabajoID {
			if err := requireJob(ctx, q, next.TrabajoID); err != nil {
				return err
			}
		}
		next.ID = current.ID
		next.FechaCreacion = current.FechaCreacion
		next.FechaActualizacion = s.timestamp()
		if err := q.UpdateTask(ctx, &next); err != nil {
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

	logging.Ctx(ctx).Debug().Str("task_id", id).Str("estado", string(after.Estado)).Msg("Task updated")
	s.committed(ctx, change{op: models.OpUpdate, table: models.TableTasks, id: id, oldValue: before, newValue: after})
	return after, nil
}

// DeleteTask removes a Task. A missing id is not an error.
func (s *Service) DeleteTask(ctx context.Context, id string) (deleted bool, err error) {
	defer observe("delete", models.TableTasks, time.Now(), &err)

	defer s.write()()
	var task *models.Task
	err = s.db.WithTx(ctx, func(q *database.Queries) error {
		current, err := q.GetTask(ctx, id)
		if err != nil {
			return err
		}
		if _, err := q.DeleteTask(ctx, id); err != nil {
			return err
		}
		task = current
		return nil
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logging.Ctx(ctx).Debug().Str("task_id", id).Msg("Task deleted")
	s.committed(ctx, change{op: models.OpDelete, table: models.TableTasks, id: id, oldValue: task})
	return true, nil
}

// TasksForDay returns the Tasks planned for date (yyyy-MM-dd).
func (s *Service) TasksForDay(ctx context.Context, date string) ([]*models.Task, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &models.ValidationError{Reason: "date must be yyyy-MM-dd", Err: err}
	}
	return s.ListTasks(ctx, models.TaskFilter{Fecha: date})
}

// PendingTasks returns every Task not yet completed.
func (s *Service) PendingTasks(ctx context.Context) ([]*models.Task, error) {
	done := false
	return s.ListTasks(ctx, models.TaskFilter{Completada: &done})
}

// CompletedTasks returns every completed Task.
func (s *Service) CompletedTasks(ctx context.Context) ([]*models.Task, error) {
	done := true
	return s.ListTasks(ctx, models.TaskFilter{Completada: &done})
}

// TasksByJob returns the Tasks of jobID that also match filter. The Job
// must exist.
func (s *Service) TasksByJob(ctx context.Context, jobID string, filter models.TaskFilter) ([]*models.Task, error) {
	if err := requireJob(ctx, s.db.Queries, jobID); err != nil {
		return nil, err
	}
	filter.TrabajoID = jobID
	return s.ListTasks(ctx, filter)
}

// TaskCost returns the effective cost of a Task: its explicit valor, or the
// Job's hourly rate times the task duration.
func (s *Service) TaskCost(ctx context.Context, id string) (float64, error) {
	task, err := s.db.GetTask(ctx, id)
	if err != nil {
		return 0, err
	}
	if task.Costo.Valor != nil {
		return *task.Costo.Valor, nil
	}
	job, err := s.db.GetJob(ctx, task.TrabajoID)
	if err != nil && !isNotFound(err) {
		return 0, err
	}
	return models.EffectiveCost(task, job), nil
}

func requireJob(ctx context.Context, q *database.Queries, id string) error {
	ok, err := q.JobExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &models.NotFoundError{Table: models.TableJobs, ID: id}
	}
	return nil
}
