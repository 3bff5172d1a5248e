package store

import (
	"strings"

	"github.com/solidcoredata/tablechain/wire"
)

// HEAD, STATE, REPORTED are the singleton pointer file names.
const (
	HEAD     = "HEAD"
	STATE    = "STATE"
	REPORTED = "REPORTED"
)

// ReadHash reads a 40-hex pointer file, tolerating a trailing newline. It
// returns coreerr.NotFound verbatim so callers can treat a missing
// HEAD/REPORTED as genesis/absent rather than an error.
func (s *Store) ReadHash(name string) (wire.Hash, error) {
	data, err := s.Read(name)
	if err != nil {
		return wire.Hash{}, err
	}
	return wire.ParseHash(strings.TrimSpace(string(data)))
}

// WriteHash atomically writes h as name's contents.
func (s *Store) WriteHash(name string, h wire.Hash) error {
	return s.Write(name, []byte(h.String()))
}

// IsBlockName reports whether name looks like a content-addressed block
// file name: exactly 40 lowercase hex characters.
func IsBlockName(name string) bool {
	if len(name) != 40 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// ReadBlockFile reads a block by its hash's hex filename.
func (s *Store) ReadBlockFile(h wire.Hash) ([]byte, error) {
	return s.Read(h.String())
}

// WriteBlockFile writes a block's encoded bytes under its content
// address. Blocks are created exactly once and never mutated; callers
// should not rely on Write's atomic-replace semantics mattering here
// beyond "never observe partial bytes".
func (s *Store) WriteBlockFile(h wire.Hash, data []byte) error {
	return s.Write(h.String(), data)
}
