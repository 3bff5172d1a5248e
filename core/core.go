// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core wires the five subsystems (store, delta, block, patch,
// truncate) into the two client-facing operations: record (append a
// block) and publish (produce a patch).
//
// Core is an explicit, owned handle created once and passed into every
// operation — there is no singleton or ambient state.
package core

import (
	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/block"
	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/patch"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/store"
	"github.com/solidcoredata/tablechain/truncate"
	"github.com/solidcoredata/tablechain/wire"
)

// defaultBlockCacheSize bounds how many decoded blocks Core keeps
// resident; it is generous enough that a single Record/Publish call
// never decodes the same block twice.
const defaultBlockCacheSize = 1024

// Core is a handle on one work directory plus its validated
// configuration.
type Core struct {
	cfg   config.Config
	store *store.Store
	cache *block.Cache
	log   *zap.Logger
}

// New validates cfg and returns a Core bound to its work directory.
func New(cfg config.Config, log *zap.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Core{
		cfg:   cfg,
		store: store.Open(cfg.WorkDir),
		cache: block.NewCache(defaultBlockCacheSize),
		log:   log,
	}, nil
}

// Record loads every configured CSV source, diffs it against the prior
// STATE (treating a missing STATE as genesis), writes the resulting
// block, advances HEAD/STATE, and runs truncation. Truncation failures
// are logged, not returned — the block is already committed by that
// point.
func (c *Core) Record() (*block.Result, error) {
	prev, err := c.priorState()
	if err != nil {
		return nil, err
	}

	result, err := block.Create(c.cfg, c.store, c.cache, c.log, prev)
	if err != nil {
		return nil, err
	}

	if err := truncate.Run(c.cfg, c.store, c.cache, c.log); err != nil {
		c.log.Warn("record: truncation failed", zap.Error(err))
	}

	return result, nil
}

// Publish produces a patch from HEAD back to ancestor (nil defers to
// REPORTED, then genesis) and returns both the decoded Patch and its
// canonical encoded bytes, ready to hand to a client.
func (c *Core) Publish(ancestor *wire.Hash) (*patch.Patch, []byte, error) {
	p, err := patch.Create(c.cfg, c.store, c.cache, c.log, ancestor)
	if err != nil {
		return nil, nil, err
	}
	encoded, err := patch.Encode(p, c.cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, encoded, nil
}

// Applied is the acknowledgement path: it always releases buf, and when
// reported is true advances REPORTED to the patch's head hash.
func (c *Core) Applied(buf *patch.Buffer, reported bool) error {
	return patch.Applied(buf, reported, c.store)
}

// priorState reads and decodes STATE, treating its absence as "no state
// yet" (genesis) rather than an error.
func (c *Core) priorState() (*state.State, error) {
	raw, err := c.store.Read(store.STATE)
	if err != nil {
		if coreerr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	body, err := wire.Unenvelope(raw)
	if err != nil {
		return nil, err
	}
	return wire.DecodeState(wire.NewReader(body), c.cfg.Tables)
}
