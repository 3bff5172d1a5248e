// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package truncate implements the reachability walk and rule-based
// pruning that runs after every successful block creation.
package truncate

import (
	"time"

	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/block"
	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/store"
	"github.com/solidcoredata/tablechain/wire"
)

type reachable struct {
	hash      wire.Hash
	createdAt time.Time
}

// Run performs one truncation pass: orphan cleanup, plus the
// reported/max-blocks/max-age rules, all additive (the removal set is
// their union). The block at HEAD is never removed. Individual removal
// failures are logged and do not abort the sweep.
func Run(cfg config.Config, st *store.Store, cache *block.Cache, log *zap.Logger) error {
	headHash, err := st.ReadHash(store.HEAD)
	if err != nil {
		if coreerr.IsNotFound(err) {
			return nil // nothing has ever been recorded; nothing to prune.
		}
		return err
	}

	chain, err := walk(st, cache, headHash)
	if err != nil {
		return err
	}
	inChain := make(map[wire.Hash]int, len(chain))
	for i, r := range chain {
		inChain[r.hash] = i
	}

	remove := make(map[string]bool)

	// Orphan sweep: always runs.
	names, err := st.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		if !store.IsBlockName(name) {
			continue
		}
		h, err := wire.ParseHash(name)
		if err != nil {
			continue
		}
		if _, ok := inChain[h]; !ok {
			remove[name] = true
		}
	}

	// Reported cutoff: always runs; no-op if REPORTED is absent or
	// names a hash the chain can no longer reach.
	if reportedHash, err := st.ReadHash(store.REPORTED); err == nil {
		if iRep, ok := inChain[reportedHash]; ok {
			for i, r := range chain {
				if i > iRep {
					remove[r.hash.String()] = true
				}
			}
		}
	} else if !coreerr.IsNotFound(err) {
		return err
	}

	// max-blocks: chain index 0 (HEAD) is always excluded.
	if cfg.Truncation.MaxBlocks != nil {
		m := *cfg.Truncation.MaxBlocks
		for i, r := range chain {
			if i > 0 && i >= m {
				remove[r.hash.String()] = true
			}
		}
	}

	// max-age: chain index 0 (HEAD) is always excluded, even if stale.
	if cfg.Truncation.MaxAge != nil {
		cutoff := time.Now().Add(-*cfg.Truncation.MaxAge)
		for i, r := range chain {
			if i > 0 && r.createdAt.Before(cutoff) {
				remove[r.hash.String()] = true
			}
		}
	}

	for name := range remove {
		if err := st.Remove(name); err != nil {
			log.Warn("truncate: failed to remove block", zap.String("name", name), zap.Error(err))
		}
	}
	log.Info("truncate complete", zap.Int("reachable", len(chain)), zap.Int("removed", len(remove)))
	return nil
}

// walk follows parent links from head to genesis, returning the
// reachable chain in chain order (index 0 = head).
func walk(st *store.Store, cache *block.Cache, head wire.Hash) ([]reachable, error) {
	var out []reachable
	h := head
	for !h.IsGenesis() {
		b, err := block.Load(st, cache, h)
		if err != nil {
			return nil, err
		}
		out = append(out, reachable{hash: h, createdAt: b.CreatedAt})
		h = b.Parent
	}
	return out, nil
}
