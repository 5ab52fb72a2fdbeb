// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Operation is the kind of mutation an audit entry records.
type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// AuditEntry is one immutable history record. OldValue is null for CREATE
// and NewValue is null for DELETE.
type AuditEntry struct {
	ID        int64           `json:"id"`
	Operation Operation       `json:"operation"`
	Table     string          `json:"table"`
	RecordID  string          `json:"recordId"`
	OldValue  json.RawMessage `json:"oldValue"`
	NewValue  json.RawMessage `json:"newValue"`
	Timestamp time.Time       `json:"timestamp"`
	Origin    string          `json:"origin"`
}

// StatisticsKindDaily tags the snapshots written after each mutation.
const StatisticsKindDaily = "diario"

// StatisticsSnapshot is one point of the derived statistics series.
type StatisticsSnapshot struct {
	ID                    int64     `json:"id"`
	Date                  string    `json:"date"`
	Kind                  string    `json:"kind"`
	ActiveJobs            int       `json:"activeJobs"`
	TotalJobs             int       `json:"totalJobs"`
	PendingTasks          int       `json:"pendingTasks"`
	TotalTasks            int       `json:"totalTasks"`
	TasksCompletedToday   int       `json:"tasksCompletedToday"`
	EstimatedRevenueToday float64   `json:"estimatedRevenueToday"`
	Timestamp             time.Time `json:"timestamp"`
}

// BackupKind distinguishes scheduled from user-triggered backups.
type BackupKind string

const (
	BackupAuto   BackupKind = "auto"
	BackupManual BackupKind = "manual"
)

// BackupRecord is one retained backup.
type BackupRecord struct {
	ID        int64           `json:"id"`
	Date      time.Time       `json:"date"`
	Kind      BackupKind      `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	SizeBytes int64           `json:"sizeBytes"`
	Forwarded bool            `json:"forwarded"`
}

// ConfigEntry is a key/value setting. Value holds any JSON value.
type ConfigEntry struct {
	Key   string          `json:"key" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// DatabaseStats is the inspection summary of the whole store.
type DatabaseStats struct {
	Jobs struct {
		Total    int            `json:"total"`
		ByEstado map[string]int `json:"byEstado"`
	} `json:"jobs"`
	Tasks struct {
		Total       int            `json:"total"`
		ByEstado    map[string]int `json:"byEstado"`
		ByPrioridad map[string]int `json:"byPrioridad"`
	} `json:"tasks"`
	Audit struct {
		Total  int        `json:"total"`
		Latest *time.Time `json:"latest"`
	} `json:"audit"`
	EstimatedSizeBytes int64  `json:"estimatedSizeBytes"`
	EstimatedSize      string `json:"estimatedSize"`
	Backups            struct {
		Local  int        `json:"local"`
		Latest *time.Time `json:"latest"`
	} `json:"backups"`
}
