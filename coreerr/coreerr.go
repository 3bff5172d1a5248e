// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coreerr defines the error kinds surfaced by the tablechain
// core. Callers distinguish kinds with errors.As against *Error, or
// errors.Is against the Kind sentinels.
package coreerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the core can raise.
type Kind int

const (
	// NotFound means a named file is absent (e.g. no HEAD yet).
	NotFound Kind = iota + 1
	// Io means an underlying storage failure.
	Io
	// Corrupt means a wire decode failed, a hash mismatch, or a pointer
	// file held bytes that are not valid 40-hex.
	Corrupt
	// Config means a schema/configuration validation failure.
	Config
	// DuplicateKey means a CSV source had two rows sharing a primary key.
	DuplicateKey
	// Conflict means a delta merge hit one of the algebra's error rules.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Io:
		return "io"
	case Corrupt:
		return "corrupt"
	case Config:
		return "config"
	case DuplicateKey:
		return "duplicate-key"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the concrete error type the core returns. Table and Key are
// populated only for Conflict.
type Error struct {
	Kind  Kind
	Table string
	Key   string
	Err   error
}

func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("tablechain: %s: table=%q key=%q: %v", e.Kind, e.Table, e.Key, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("tablechain: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("tablechain: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, coreerr.ErrNotFound) (or any other &Error{Kind: k})
// match every *Error of the same Kind, whatever its Err, Table or Key.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(k Kind, err error) *Error { return &Error{Kind: k, Err: err} }

// New wraps err under the given kind.
func New(k Kind, err error) *Error { return newErr(k, err) }

// Newf builds a kind error from a format string.
func Newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

// Conflictf builds a Conflict error for the given table/key.
func Conflictf(table, key string, format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Table: table, Key: key, Err: fmt.Errorf(format, args...)}
}

// Sentinel values usable with errors.Is(err, coreerr.ErrNotFound), etc.
var (
	ErrNotFound     = &Error{Kind: NotFound}
	ErrIo           = &Error{Kind: Io}
	ErrCorrupt      = &Error{Kind: Corrupt}
	ErrConfig       = &Error{Kind: Config}
	ErrDuplicateKey = &Error{Kind: DuplicateKey}
	ErrConflict     = &Error{Kind: Conflict}
)

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is (or wraps) a Conflict error.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// AsConflict extracts table/key from a Conflict error, if err is one.
func AsConflict(err error) (table, key string, ok bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == Conflict {
		return e.Table, e.Key, true
	}
	return "", "", false
}
