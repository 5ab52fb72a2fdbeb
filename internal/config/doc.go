// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package config loads the engine configuration.

Sources are layered with koanf v2, lowest priority first:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
 3. Environment variables, mapped through an explicit table so unrelated
    variables never leak into the configuration

The backup section only holds defaults. At runtime the backup engine reads
the same keys from the config_entries table first, so a user changing a
setting through the gateway wins over the file.

# Environment Variables

	AGENDA_DB_PATH            database.path
	AGENDA_ORIGIN             engine.origin
	AUTO_BACKUP               backup.auto_backup
	BACKUP_INTERVAL_HOURS     backup.interval_hours
	KEEP_BACKUP_COUNT         backup.keep_count
	COMPRESS_BACKUPS          backup.compress
	ENCRYPT_BACKUPS           backup.encrypt (reserved, no effect)
	FORWARD_MODE              forward.mode (none, http, nats)
	FORWARD_HTTP_URL          forward.http.url
	FORWARD_NATS_URL          forward.nats.url
	HTTP_ENABLED              server.enabled
	HTTP_PORT                 server.port
	LOG_LEVEL                 logging.level
	LOG_FORMAT                logging.format

See envMappings for the complete list.
*/
package config
