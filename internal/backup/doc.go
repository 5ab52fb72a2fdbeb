// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package backup produces and restores full snapshots of the agenda.

Components:

  - Engine: Generate reads jobs, tasks, config and statistics inside one
    DuckDB transaction, optionally zlib-compresses the payload, stores it
    as a BackupRecord, evicts the oldest records beyond the retention
    count and hands a copy to the remote forwarder.
  - Restore: accepts a plain or compressed payload, validates its shape
    and references, then replaces jobs, tasks, config and statistics in
    one transaction while gateway writes are held off. Audit history is
    kept.
  - Scheduler: one backup shortly after Start, then one per interval.
    Reload restarts the loop when autoBackup or the interval changed.
  - Export/Import: file and stream adapters over Generate and Restore.

Payload format:

	{
	  "schemaVersion": 2,
	  "generatedAt": "2026-05-01T12:00:00Z",
	  "compressed": false,
	  "data": {"jobs": [...], "tasks": [...], "config": [...], "statistics": [...]},
	  "metadata": {"totalJobs": 1, "totalTasks": 3, "lastAuditTimestamp": "...", "estimatedSizeBytes": 812}
	}

A compressed payload replaces "data" with "bytes", a JSON array of the
zlib stream of the whole uncompressed payload. Restore also accepts the
older form that carried those bytes under "data".

Settings come from the config_entries table (autoBackup,
backupIntervalHours, keepBackupCount or keepBackupDays, compressBackups,
encryptBackups) falling back to the file/env configuration. encryptBackups
is reserved: it logs a warning and changes nothing.

Only one Generate runs at a time. A concurrent call, manual or scheduled,
fails fast with ErrBackupInProgress.
*/
package backup
