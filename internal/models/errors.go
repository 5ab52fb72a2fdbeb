// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package models

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Every typed error below matches exactly one.
var (
	ErrSchema      = errors.New("schema error")
	ErrNotFound    = errors.New("record not found")
	ErrValidation  = errors.New("validation failed")
	ErrCompression = errors.New("compression error")
	ErrIO          = errors.New("storage i/o error")
)

// SchemaError reports a failed table, index or upgrade step. It is fatal
// to opening the database.
type SchemaError struct {
	Step    string
	Version int
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("schema v%d %s: %v", e.Version, e.Step, e.Err)
	}
	return fmt.Sprintf("schema %s: %v", e.Step, e.Err)
}

func (e *SchemaError) Unwrap() error        { return e.Err }
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NotFoundError reports a missing record, either the target of a get or
// update, or the Job referenced by a new Task.
type NotFoundError struct {
	Table string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Table, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports malformed input: a record failing its field
// rules or a backup payload with the wrong shape.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error        { return e.Err }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CompressionError reports a compress or decompress failure.
type CompressionError struct {
	Op  string
	Err error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CompressionError) Unwrap() error        { return e.Err }
func (e *CompressionError) Is(target error) bool { return target == ErrCompression }

// IOError reports a database or file read/write failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error        { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrIO }

// WrapIO returns err as an *IOError unless it already belongs to the
// taxonomy. A nil err stays nil.
func WrapIO(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTaxonomy(err) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// IsTaxonomy reports whether err is one of the engine's typed errors.
func IsTaxonomy(err error) bool {
	return errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrCompression) ||
		errors.Is(err, ErrIO)
}
