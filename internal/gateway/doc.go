// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package gateway is the only write path for Jobs, Tasks and configuration.

Every successful mutation follows the same sequence:

 1. validate the record
 2. persist it (inside one DuckDB transaction)
 3. append an audit entry with the old and new snapshots
 4. append one statistics snapshot
 5. publish a change event

Steps 3 to 5 are best-effort and never fail the call. Storage errors from
step 2 are returned as *models.IOError; a missing record is a
*models.NotFoundError and bad input a *models.ValidationError.

Writes share the read side of an RW gate. Exclusive takes the write side so
a restore never interleaves with gateway writes.

Usage:

	gw := gateway.New(db, journal, aggregator, feed)
	job, err := gw.CreateJob(ctx, &models.Job{Nombre: "Jardin"})
	task, err := gw.CreateTask(ctx, &models.Task{TrabajoID: job.ID, Titulo: "Poda"})
	_, err = gw.SetTaskStatus(ctx, task.ID, models.TaskRealizadaCobrada)
*/
package gateway
