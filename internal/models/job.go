// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package models

import (
	"strings"
	"time"
)

// Table names as they appear in audit entries and backup payloads.
const (
	TableJobs  = "trabajos"
	TableTasks = "tareas"
)

// JobEstado is the lifecycle state of a Job.
type JobEstado string

const (
	JobActivo    JobEstado = "activo"
	JobInactivo  JobEstado = "inactivo"
	JobArchivado JobEstado = "archivado"
)

// Job is a client engagement owning zero or more Tasks.
type Job struct {
	ID           string       `json:"id"`
	Nombre       string       `json:"nombre" validate:"required"`
	Cliente      string       `json:"cliente"`
	Descripcion  string       `json:"descripcion,omitempty"`
	Estado       JobEstado    `json:"estado" validate:"omitempty,oneof=activo inactivo archivado"`
	Contacto     Contacto     `json:"contacto"`
	Ubicacion    Ubicacion    `json:"ubicacion"`
	Costo        JobCosto     `json:"costo"`
	Periodicidad Periodicidad `json:"periodicidad"`
	Etiquetas    []string     `json:"etiquetas"`
	Notas        string       `json:"notas,omitempty"`

	FechaCreacion      time.Time `json:"fechaCreacion"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
}

// Contacto holds the client's contact channels.
type Contacto struct {
	Telefono string `json:"telefono"`
	Email    string `json:"email" validate:"omitempty,email"`
	Whatsapp string `json:"whatsapp"`
	Notas    string `json:"notas,omitempty"`
}

// Ubicacion describes where the work happens.
type Ubicacion struct {
	Direccion   string       `json:"direccion"`
	Coordenadas *Coordenadas `json:"coordenadas,omitempty"`
	Notas       string       `json:"notas,omitempty"`
	Transporte  Transporte   `json:"transporte"`
}

// Coordenadas is a WGS84 point.
type Coordenadas struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Transporte is commute information for reaching the location.
type Transporte struct {
	Colectivos       []string `json:"colectivos"`
	EnlaceGoogleMaps string   `json:"enlaceGoogleMaps,omitempty"`
	TiempoEstimado   string   `json:"tiempoEstimado,omitempty"`
}

// JobCosto is the billing setup used to derive task cost.
type JobCosto struct {
	ValorHora float64 `json:"valorHora" validate:"gte=0"`
	Moneda    string  `json:"moneda"`
	TipoCobro string  `json:"tipoCobro"`
}

// Periodicidad describes how the job recurs.
type Periodicidad struct {
	Tipo                 string `json:"tipo"`
	Frecuencia           int    `json:"frecuencia" validate:"gte=0"`
	DiasSemana           []int  `json:"diasSemana" validate:"dive,gte=0,lte=6"`
	FechaFin             string `json:"fechaFin,omitempty" validate:"plandate"`
	ExcluirFinesDeSemana bool   `json:"excluirFinesDeSemana"`
}

// Defaults used when a new Job leaves a field empty.
const (
	DefaultMoneda        = "ARS"
	DefaultTipoCobro     = "hora"
	DefaultPeriodicidad  = "unica"
	DefaultJobFrecuencia = 1
)

// ApplyDefaults fills the empty fields of a new Job.
func (j *Job) ApplyDefaults() {
	if j.Estado == "" {
		j.Estado = JobActivo
	}
	if j.Costo.Moneda == "" {
		j.Costo.Moneda = DefaultMoneda
	}
	if j.Costo.TipoCobro == "" {
		j.Costo.TipoCobro = DefaultTipoCobro
	}
	if j.Periodicidad.Tipo == "" {
		j.Periodicidad.Tipo = DefaultPeriodicidad
	}
	if j.Periodicidad.Frecuencia == 0 {
		j.Periodicidad.Frecuencia = DefaultJobFrecuencia
	}
	if j.Etiquetas == nil {
		j.Etiquetas = []string{}
	}
	if j.Periodicidad.DiasSemana == nil {
		j.Periodicidad.DiasSemana = []int{}
	}
	if j.Ubicacion.Transporte.Colectivos == nil {
		j.Ubicacion.Transporte.Colectivos = []string{}
	}
}

// JobFilter narrows ListJobs. Zero values match everything.
type JobFilter struct {
	Estado JobEstado
	// Cliente matches case-insensitively as a substring.
	Cliente string
}

// Match reports whether j passes the filter.
func (f JobFilter) Match(j *Job) bool {
	if f.Estado != "" && j.Estado != f.Estado {
		return false
	}
	if f.Cliente != "" && !strings.Contains(strings.ToLower(j.Cliente), strings.ToLower(f.Cliente)) {
		return false
	}
	return true
}

// JobPatch is a partial update for a Job.
type JobPatch struct {
	Nombre       *string            `json:"nombre,omitempty" validate:"omitempty,min=1"`
	Cliente      *string            `json:"cliente,omitempty"`
	Descripcion  *string            `json:"descripcion,omitempty"`
	Estado       *JobEstado         `json:"estado,omitempty" validate:"omitempty,oneof=activo inactivo archivado"`
	Contacto     *ContactoPatch     `json:"contacto,omitempty"`
	Ubicacion    *UbicacionPatch    `json:"ubicacion,omitempty"`
	Costo        *JobCostoPatch     `json:"costo,omitempty"`
	Periodicidad *PeriodicidadPatch `json:"periodicidad,omitempty"`
	Etiquetas    *[]string          `json:"etiquetas,omitempty"`
	Notas        *string            `json:"notas,omitempty"`
}

// ContactoPatch updates individual contact channels.
type ContactoPatch struct {
	Telefono *string `json:"telefono,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Whatsapp *string `json:"whatsapp,omitempty"`
	Notas    *string `json:"notas,omitempty"`
}

// UbicacionPatch updates the location. Coordenadas replaces the point;
// ClearCoordenadas removes it.
type UbicacionPatch struct {
	Direccion        *string          `json:"direccion,omitempty"`
	Coordenadas      *Coordenadas     `json:"coordenadas,omitempty"`
	ClearCoordenadas bool             `json:"clearCoordenadas,omitempty"`
	Notas            *string          `json:"notas,omitempty"`
	Transporte       *TransportePatch `json:"transporte,omitempty"`
}

// TransportePatch updates commute information.
type TransportePatch struct {
	Colectivos       *[]string `json:"colectivos,omitempty"`
	EnlaceGoogleMaps *string   `json:"enlaceGoogleMaps,omitempty"`
	TiempoEstimado   *string   `json:"tiempoEstimado,omitempty"`
}

// JobCostoPatch updates billing.
type JobCostoPatch struct {
	ValorHora *float64 `json:"valorHora,omitempty" validate:"omitempty,gte=0"`
	Moneda    *string  `json:"moneda,omitempty"`
	TipoCobro *string  `json:"tipoCobro,omitempty"`
}

// PeriodicidadPatch updates recurrence.
type PeriodicidadPatch struct {
	Tipo                 *string `json:"tipo,omitempty"`
	Frecuencia           *int    `json:"frecuencia,omitempty" validate:"omitempty,gte=0"`
	DiasSemana           *[]int  `json:"diasSemana,omitempty"`
	FechaFin             *string `json:"fechaFin,omitempty" validate:"omitempty,plandate"`
	ExcluirFinesDeSemana *bool   `json:"excluirFinesDeSemana,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *JobPatch) IsEmpty() bool {
	return p == nil || (p.Nombre == nil && p.Cliente == nil && p.Descripcion == nil &&
		p.Estado == nil && p.Contacto == nil && p.Ubicacion == nil && p.Costo == nil &&
		p.Periodicidad == nil && p.Etiquetas == nil && p.Notas == nil)
}

// Apply merges the patch into j. Timestamps are the caller's job.
func (p *JobPatch) Apply(j *Job) {
	if p == nil {
		return
	}
	setString(&j.Nombre, p.Nombre)
	setString(&j.Cliente, p.Cliente)
	setString(&j.Descripcion, p.Descripcion)
	setString(&j.Notas, p.Notas)
	if p.Estado != nil {
		j.Estado = *p.Estado
	}
	if p.Etiquetas != nil {
		j.Etiquetas = append([]string{}, (*p.Etiquetas)...)
	}

	if c := p.Contacto; c != nil {
		setString(&j.Contacto.Telefono, c.Telefono)
		setString(&j.Contacto.Email, c.Email)
		setString(&j.Contacto.Whatsapp, c.Whatsapp)
		setString(&j.Contacto.Notas, c.Notas)
	}

	if u := p.Ubicacion; u != nil {
		setString(&j.Ubicacion.Direccion, u.Direccion)
		setString(&j.Ubicacion.Notas, u.Notas)
		switch {
		case u.ClearCoordenadas:
			j.Ubicacion.Coordenadas = nil
		case u.Coordenadas != nil:
			pt := *u.Coordenadas
			j.Ubicacion.Coordenadas = &pt
		}
		if t := u.Transporte; t != nil {
			if t.Colectivos != nil {
				j.Ubicacion.Transporte.Colectivos = append([]string{}, (*t.Colectivos)...)
			}
			setString(&j.Ubicacion.Transporte.EnlaceGoogleMaps, t.EnlaceGoogleMaps)
			setString(&j.Ubicacion.Transporte.TiempoEstimado, t.TiempoEstimado)
		}
	}

	if c := p.Costo; c != nil {
		if c.ValorHora != nil {
			j.Costo.ValorHora = *c.ValorHora
		}
		setString(&j.Costo.Moneda, c.Moneda)
		setString(&j.Costo.TipoCobro, c.TipoCobro)
	}

	if r := p.Periodicidad; r != nil {
		setString(&j.Periodicidad.Tipo, r.Tipo)
		setString(&j.Periodicidad.FechaFin, r.FechaFin)
		if r.Frecuencia != nil {
			j.Periodicidad.Frecuencia = *r.Frecuencia
		}
		if r.DiasSemana != nil {
			j.Periodicidad.DiasSemana = append([]int{}, (*r.DiasSemana)...)
		}
		if r.ExcluirFinesDeSemana != nil {
			j.Periodicidad.ExcluirFinesDeSemana = *r.ExcluirFinesDeSemana
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
