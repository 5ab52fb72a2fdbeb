// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package models

import (
	"strings"
	"time"
)

// Prioridad is a task priority.
type Prioridad string

const (
	PrioridadAlta  Prioridad = "alta"
	PrioridadMedia Prioridad = "media"
	PrioridadBaja  Prioridad = "baja"
)

// TaskEstado is the lifecycle state of a Task.
type TaskEstado string

const (
	TaskPendiente              TaskEstado = "pendiente"
	TaskRealizadaCobrada       TaskEstado = "realizada_cobrada"
	TaskRealizadaPendientePago TaskEstado = "realizada_pendiente_pago"
	TaskCancelada              TaskEstado = "cancelada"
)

// Completes reports the completada value that agrees with the state:
// realized and cancelled tasks are complete, pending ones are not.
func (e TaskEstado) Completes() bool {
	return strings.HasPrefix(string(e), "realizada") || e == TaskCancelada
}

// Task is a unit of scheduled work belonging to one Job.
type Task struct {
	ID            string        `json:"id"`
	TrabajoID     string        `json:"trabajoId" validate:"required"`
	Titulo        string        `json:"titulo" validate:"required"`
	Descripcion   string        `json:"descripcion"`
	Planificacion Planificacion `json:"planificacion"`
	Costo         TaskCosto     `json:"costo"`
	Prioridad     Prioridad     `json:"prioridad" validate:"omitempty,oneof=alta media baja"`
	Estado        TaskEstado    `json:"estado" validate:"omitempty,oneof=pendiente realizada_cobrada realizada_pendiente_pago cancelada"`
	Completada    bool          `json:"completada"`
	Etiquetas     []string      `json:"etiquetas"`
	Notas         string        `json:"notas,omitempty"`

	FechaCreacion      time.Time `json:"fechaCreacion"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
}

// Planificacion holds planned and actual scheduling. Durations are minutes.
type Planificacion struct {
	FechaPlanificada    string `json:"fechaPlanificada" validate:"plandate"`
	HoraPlanificada     string `json:"horaPlanificada" validate:"clocktime"`
	DuracionPlanificada int    `json:"duracionPlanificada" validate:"gte=0"`
	FechaRealizada      string `json:"fechaRealizada,omitempty" validate:"plandate"`
	HoraRealizada       string `json:"horaRealizada,omitempty" validate:"clocktime"`
	DuracionReal        int    `json:"duracionReal,omitempty" validate:"gte=0"`
}

// TaskCosto is the task's price. A nil Valor means the cost is derived
// from the owning Job's hourly rate.
type TaskCosto struct {
	Valor      *float64 `json:"valor,omitempty" validate:"omitempty,gte=0"`
	Moneda     string   `json:"moneda"`
	NotasCosto string   `json:"notasCosto,omitempty"`
}

// Defaults used when a new Task leaves a field empty.
const (
	DefaultHoraPlanificada     = "09:00"
	DefaultDuracionPlanificada = 60
)

// ApplyDefaults fills the empty fields of a new Task.
func (t *Task) ApplyDefaults() {
	if t.Prioridad == "" {
		t.Prioridad = PrioridadMedia
	}
	if t.Estado == "" {
		t.Estado = TaskPendiente
	}
	if t.Planificacion.HoraPlanificada == "" {
		t.Planificacion.HoraPlanificada = DefaultHoraPlanificada
	}
	if t.Planificacion.DuracionPlanificada == 0 {
		t.Planificacion.DuracionPlanificada = DefaultDuracionPlanificada
	}
	if t.Costo.Moneda == "" {
		t.Costo.Moneda = DefaultMoneda
	}
	if t.Etiquetas == nil {
		t.Etiquetas = []string{}
	}
}

// Duration returns the actual duration when recorded, else the planned one.
func (t *Task) Duration() int {
	if t.Planificacion.DuracionReal > 0 {
		return t.Planificacion.DuracionReal
	}
	return t.Planificacion.DuracionPlanificada
}

// EffectiveCost returns the explicit costo.valor when set. Otherwise the
// cost is the job's hourly rate times the task duration in hours. A nil
// job yields zero for derived costs.
func EffectiveCost(t *Task, job *Job) float64 {
	if t.Costo.Valor != nil {
		return *t.Costo.Valor
	}
	if job == nil {
		return 0
	}
	return job.Costo.ValorHora * float64(t.Duration()) / 60
}

// TaskFilter narrows ListTasks. Zero values match everything.
type TaskFilter struct {
	TrabajoID  string
	Estado     TaskEstado
	Prioridad  Prioridad
	Completada *bool
	// Fecha matches planificacion.fechaPlanificada exactly.
	Fecha string
}

// Match reports whether t passes the filter.
func (f TaskFilter) Match(t *Task) bool {
	if f.TrabajoID != "" && t.TrabajoID != f.TrabajoID {
		return false
	}
	if f.Estado != "" && t.Estado != f.Estado {
		return false
	}
	if f.Prioridad != "" && t.Prioridad != f.Prioridad {
		return false
	}
	if f.Completada != nil && t.Completada != *f.Completada {
		return false
	}
	if f.Fecha != "" && t.Planificacion.FechaPlanificada != f.Fecha {
		return false
	}
	return true
}

// TaskPatch is a partial update for a Task. Changing TrabajoID moves the
// task and is checked against existing Jobs like a create.
type TaskPatch struct {
	TrabajoID     *string             `json:"trabajoId,omitempty" validate:"omitempty,min=1"`
	Titulo        *string             `json:"titulo,omitempty" validate:"omitempty,min=1"`
	Descripcion   *string             `json:"descripcion,omitempty"`
	Planificacion *PlanificacionPatch `json:"planificacion,omitempty"`
	Costo         *TaskCostoPatch     `json:"costo,omitempty"`
	Prioridad     *Prioridad          `json:"prioridad,omitempty" validate:"omitempty,oneof=alta media baja"`
	Estado        *TaskEstado         `json:"estado,omitempty" validate:"omitempty,oneof=pendiente realizada_cobrada realizada_pendiente_pago cancelada"`
	Completada    *bool               `json:"completada,omitempty"`
	Etiquetas     *[]string           `json:"etiquetas,omitempty"`
	Notas         *string             `json:"notas,omitempty"`
}

// PlanificacionPatch updates individual scheduling fields.
type PlanificacionPatch struct {
	FechaPlanificada    *string `json:"fechaPlanificada,omitempty" validate:"omitempty,plandate"`
	HoraPlanificada     *string `json:"horaPlanificada,omitempty" validate:"omitempty,clocktime"`
	DuracionPlanificada *int    `json:"duracionPlanificada,omitempty" validate:"omitempty,gte=0"`
	FechaRealizada      *string `json:"fechaRealizada,omitempty" validate:"omitempty,plandate"`
	HoraRealizada       *string `json:"horaRealizada,omitempty" validate:"omitempty,clocktime"`
	DuracionReal        *int    `json:"duracionReal,omitempty" validate:"omitempty,gte=0"`
}

// TaskCostoPatch updates pricing. ClearValor drops an explicit value so the
// cost is derived again.
type TaskCostoPatch struct {
	Valor      *float64 `json:"valor,omitempty" validate:"omitempty,gte=0"`
	ClearValor bool     `json:"clearValor,omitempty"`
	Moneda     *string  `json:"moneda,omitempty"`
	NotasCosto *string  `json:"notasCosto,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *TaskPatch) IsEmpty() bool {
	return p == nil || (p.TrabajoID == nil && p.Titulo == nil && p.Descripcion == nil &&
		p.Planificacion == nil && p.Costo == nil && p.Prioridad == nil && p.Estado == nil &&
		p.Completada == nil && p.Etiquetas == nil && p.Notas == nil)
}

// Apply merges the patch into t. Timestamps are the caller's job.
func (p *TaskPatch) Apply(t *Task) {
	if p == nil {
		return
	}
	setString(&t.TrabajoID, p.TrabajoID)
	setString(&t.Titulo, p.Titulo)
	setString(&t.Descripcion, p.Descripcion)
	setString(&t.Notas, p.Notas)
	if p.Prioridad != nil {
		t.Prioridad = *p.Prioridad
	}
	if p.Estado != nil {
		t.Estado = *p.Estado
	}
	if p.Completada != nil {
		t.Completada = *p.Completada
	}
	if p.Etiquetas != nil {
		t.Etiquetas = append([]string{}, (*p.Etiquetas)...)
	}

	if pl := p.Planificacion; pl != nil {
		setString(&t.Planificacion.FechaPlanificada, pl.FechaPlanificada)
		setString(&t.Planificacion.HoraPlanificada, pl.HoraPlanificada)
		setInt(&t.Planificacion.DuracionPlanificada, pl.DuracionPlanificada)
		setString(&t.Planificacion.FechaRealizada, pl.FechaRealizada)
		setString(&t.Planificacion.HoraRealizada, pl.HoraRealizada)
		setInt(&t.Planificacion.DuracionReal, pl.DuracionReal)
	}

	if c := p.Costo; c != nil {
		switch {
		case c.ClearValor:
			t.Costo.Valor = nil
		case c.Valor != nil:
			v := *c.Valor
			t.Costo.Valor = &v
		}
		setString(&t.Costo.Moneda, c.Moneda)
		setString(&t.Costo.NotasCosto, c.NotasCosto)
	}
}
