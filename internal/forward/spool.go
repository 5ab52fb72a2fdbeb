// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package forward

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/agenda/internal/logging"
	"github.com/tomtom215/agenda/internal/metrics"
)

// ErrEntryNotFound is returned when a spool entry does not exist.
var ErrEntryNotFound = errors.New("forward: spool entry not found")

// Key prefixes. Confirmed entries are kept under their own prefix until
// Compact removes them.
const (
	prefixPending   = "pending:"
	prefixConfirmed = "confirmed:"
)

// SpoolEntry is one envelope waiting for delivery.
type SpoolEntry struct {
	Envelope      Envelope   `json:"envelope"`
	EnqueuedAt    time.Time  `json:"enqueuedAt"`
	Attempts      int        `json:"attempts"`
	LastAttemptAt time.Time  `json:"lastAttemptAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
}

// Spool is a durable outbox for envelopes that could not be delivered.
type Spool struct {
	db *badger.DB

	mu     sync.RWMutex
	closed bool
}

// OpenSpool opens the spool at path. An empty path keeps it in memory,
// which survives nothing but is enough for tests and ephemeral runs.
func OpenSpool(path string) (*Spool, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = true
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}

	s := &Spool{db: db}
	if n, err := s.countPending(); err == nil {
		metrics.SpoolDepth.Set(float64(n))
	}
	logging.Info().Str("path", path).Bool("in_memory", path == "").Msg("Forward spool opened")
	return s, nil
}

func (s *Spool) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Enqueue stores env as pending.
func (s *Spool) Enqueue(_ context.Context, env Envelope) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if env.ID == "" {
		return errors.New("forward: envelope id is required")
	}

	data, err := json.Marshal(&SpoolEntry{Envelope: env, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal spool entry: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixPending+env.ID), data)
	}); err != nil {
		return fmt.Errorf("write spool entry: %w", err)
	}
	metrics.SpoolDepth.Inc()
	return nil
}

// Pending returns every undelivered entry in key order.
func (s *Spool) Pending(ctx context.Context) ([]*SpoolEntry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var entries []*SpoolEntry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var e SpoolEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable spool entry")
				continue
			}
			entries = append(entries, &e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate spool: %w", err)
	}
	return entries, nil
}

// Confirm moves the entry from pending to confirmed.
func (s *Spool) Confirm(_ context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	err := s.update(id, func(e *SpoolEntry, txn *badger.Txn, key []byte) error {
		now := time.Now().UTC()
		e.ConfirmedAt = &now
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(prefixConfirmed+id), data); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	metrics.SpoolDepth.Dec()
	return nil
}

// Attempt records a failed delivery and returns the new attempt count.
func (s *Spool) Attempt(_ context.Context, id string, cause error) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	var attempts int
	err := s.update(id, func(e *SpoolEntry, txn *badger.Txn, key []byte) error {
		e.Attempts++
		e.LastAttemptAt = time.Now().UTC()
		if cause != nil {
			e.LastError = cause.Error()
		}
		attempts = e.Attempts
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return attempts, err
}

// Drop removes a pending entry without delivering it.
func (s *Spool) Drop(_ context.Context, id string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	err := s.update(id, func(_ *SpoolEntry, txn *badger.Txn, key []byte) error {
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}
	metrics.SpoolDepth.Dec()
	metrics.SpoolDropped.Inc()
	return nil
}

// Compact deletes confirmed entries and returns how many were removed.
func (s *Spool) Compact(_ context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(prefixConfirmed)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan confirmed entries: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("delete confirmed entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush compaction: %w", err)
	}
	return len(keys), nil
}

// Depth returns the number of pending entries.
func (s *Spool) Depth() (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.countPending()
}

func (s *Spool) countPending() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(prefixPending)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// update loads the pending entry id and hands it to fn inside one
// read-write transaction.
func (s *Spool) update(id string, fn func(e *SpoolEntry, txn *badger.Txn, key []byte) error) error {
	key := []byte(prefixPending + id)
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return fmt.Errorf("get spool entry: %w", err)
		}
		var e SpoolEntry
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			return fmt.Errorf("unmarshal spool entry: %w", err)
		}
		return fn(&e, txn, key)
	})
}

// Close closes the underlying database.
func (s *Spool) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close spool: %w", err)
	}
	logging.Info().Msg("Forward spool closed")
	return nil
}
