// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

/*
Package forward ships generated backups to a remote store.

Forwarding is best-effort. Local retention is the durability guarantee, so
a failed forward never fails backup generation; instead the envelope is
written to a Badger spool and the RetryLoop delivers it later.

Forwarders:

  - HTTPForwarder POSTs the envelope as JSON, behind a circuit breaker
  - NATSForwarder publishes it on a core NATS subject through Watermill

Flow:

	Dispatcher.Dispatch
	    |-- forwarder.Forward ok   -> return true
	    '-- forwarder.Forward err  -> Spool.Enqueue
	                                      |
	RetryLoop tick -> Spool.Pending -> forwarder.Forward
	    |-- ok   -> Spool.Confirm, OnDelivered(backupID)
	    '-- err  -> Spool.Attempt (dropped after MaxAttempts)
*/
package forward
