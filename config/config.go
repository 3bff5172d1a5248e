// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the validated configuration structure the core
// receives: it is consumed, not parsed — loading an on-disk config
// file's shape is the CLI front-end's job (see service/config for that
// thin loader).
//
// Config is an explicit, owned, immutable value built once and threaded
// into every core operation, never ambient or global state.
package config

import (
	"time"

	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/schema"
	"github.com/solidcoredata/tablechain/wire"
)

// Truncation carries the optional pruning rules. A nil MaxBlocks/MaxAge
// disables the corresponding rule.
type Truncation struct {
	MaxBlocks *int
	MaxAge    *time.Duration
}

// Config is the validated, immutable configuration the core operates
// under: the work directory, the table schemas to diff, optional
// compression settings, and optional truncation settings.
type Config struct {
	WorkDir     string
	Tables      []schema.Table
	Compression wire.Compression
	Truncation  Truncation
}

// TableNames returns the declared table names in declaration order — the
// deterministic order the wire codec iterates tables in.
func (c Config) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.Name
	}
	return names
}

// Validate checks every rule required before the core is handed a
// Config: per-table schema validity and max-blocks >= 1 when present.
// MaxAge needs no further check here: it only ever reaches Config already
// parsed into a time.Duration (see ParseDuration), so an unparseable
// string can't arrive at this type at all.
func (c Config) Validate() error {
	if c.WorkDir == "" {
		return coreerr.Newf(coreerr.Config, "config: work directory is required")
	}
	if len(c.Tables) == 0 {
		return coreerr.Newf(coreerr.Config, "config: no tables declared")
	}
	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if seen[t.Name] {
			return coreerr.Newf(coreerr.Config, "config: duplicate table name %q", t.Name)
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if c.Truncation.MaxBlocks != nil && *c.Truncation.MaxBlocks < 1 {
		return coreerr.Newf(coreerr.Config, "config: max-blocks must be >= 1, got %d", *c.Truncation.MaxBlocks)
	}
	return nil
}
