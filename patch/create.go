package patch

import (
	"time"

	"go.uber.org/zap"

	"github.com/solidcoredata/tablechain/block"
	"github.com/solidcoredata/tablechain/config"
	"github.com/solidcoredata/tablechain/coreerr"
	"github.com/solidcoredata/tablechain/delta"
	"github.com/solidcoredata/tablechain/state"
	"github.com/solidcoredata/tablechain/store"
	"github.com/solidcoredata/tablechain/wire"
)

// Create walks the chain from HEAD back to ancestor (or, if ancestor is
// nil, REPORTED, or genesis if REPORTED is absent too), folds the
// traversed blocks' deltas pairwise, and returns either the stripped
// consolidated delta or a full-state fallback — whichever encodes
// smaller.
func Create(cfg config.Config, st *store.Store, cache *block.Cache, log *zap.Logger, ancestor *wire.Hash) (*Patch, error) {
	anc, err := resolveAncestor(st, ancestor)
	if err != nil {
		return nil, err
	}

	headHash, err := st.ReadHash(store.HEAD)
	if err != nil {
		if coreerr.IsNotFound(err) {
			headHash = wire.Genesis
		} else {
			return nil, err
		}
	}

	consolidated := map[string]*delta.Delta{}
	n := 0
	h := headHash
	var conflict error
	for h != anc && !h.IsGenesis() {
		b, loadErr := block.Load(st, cache, h)
		if loadErr != nil {
			return nil, loadErr
		}
		merged, mergeErr := delta.MergeTables(b.Deltas, consolidated)
		if mergeErr != nil {
			if coreerr.IsConflict(mergeErr) {
				conflict = mergeErr
				break
			}
			return nil, mergeErr
		}
		consolidated = merged
		n++
		h = b.Parent
	}

	createdAt := time.Now()

	if conflict != nil {
		log.Warn("patch: conflict during consolidation, falling back to full state",
			zap.String("head", headHash.String()), zap.Error(conflict))
		fullState, err := readCurrentState(cfg, st)
		if err != nil {
			return nil, err
		}
		return &Patch{HeadHash: headHash, CreatedAt: createdAt, BlockCount: n, State: fullState}, nil
	}

	if n == 0 {
		return &Patch{HeadHash: headHash, CreatedAt: createdAt, BlockCount: 0, Deltas: map[string]*delta.Stripped{}}, nil
	}

	stripped := delta.StripTables(consolidated)
	deltaCandidate := &Patch{HeadHash: headHash, CreatedAt: createdAt, BlockCount: n, Deltas: stripped}
	deltaBytes, err := Encode(deltaCandidate, cfg)
	if err != nil {
		return nil, err
	}

	fullState, err := readCurrentState(cfg, st)
	if err != nil {
		return nil, err
	}
	stateCandidate := &Patch{HeadHash: headHash, CreatedAt: createdAt, BlockCount: n, State: fullState}
	stateBytes, err := Encode(stateCandidate, cfg)
	if err != nil {
		return nil, err
	}

	// Ties select the deltas payload.
	if len(stateBytes) < len(deltaBytes) {
		log.Info("patch: selecting full-state payload", zap.Int("state_bytes", len(stateBytes)), zap.Int("delta_bytes", len(deltaBytes)))
		return stateCandidate, nil
	}
	log.Info("patch: selecting delta payload", zap.Int("state_bytes", len(stateBytes)), zap.Int("delta_bytes", len(deltaBytes)))
	return deltaCandidate, nil
}

func resolveAncestor(st *store.Store, ancestor *wire.Hash) (wire.Hash, error) {
	if ancestor != nil {
		return *ancestor, nil
	}
	reported, err := st.ReadHash(store.REPORTED)
	if err == nil {
		return reported, nil
	}
	if coreerr.IsNotFound(err) {
		return wire.Genesis, nil
	}
	return wire.Hash{}, err
}

// readCurrentState reads and decodes the STATE pointer file, which by
// invariant always matches the block at HEAD.
func readCurrentState(cfg config.Config, st *store.Store) (*state.State, error) {
	raw, err := st.Read(store.STATE)
	if err != nil {
		return nil, err
	}
	body, err := wire.Unenvelope(raw)
	if err != nil {
		return nil, err
	}
	return wire.DecodeState(wire.NewReader(body), cfg.Tables)
}
