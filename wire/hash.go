package wire

import (
	"crypto/sha1"
	"encoding/hex"
	"io"

	"github.com/solidcoredata/tablechain/coreerr"
)

// Hash is a 40-hex-character content address. It is used purely as a
// content address, never as a trust anchor: collisions are not
// adversarially modeled.
type Hash [sha1.Size]byte

// Genesis is the all-zeros sentinel parent hash for the first block in a
// chain.
var Genesis Hash

// Sum returns the content address of data.
func Sum(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// String returns the 40-hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsGenesis reports whether h is the all-zeros sentinel.
func (h Hash) IsGenesis() bool {
	return h == Genesis
}

// ParseHash decodes a 40-hex string into a Hash, failing with
// coreerr.Corrupt if s is not valid 40-hex.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != len(h)*2 {
		return h, coreerr.Newf(coreerr.Corrupt, "wire: hash %q is not %d hex characters", s, len(h)*2)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, coreerr.New(coreerr.Corrupt, err)
	}
	copy(h[:], b)
	return h, nil
}

func (w *Writer) WriteHash(h Hash) {
	w.buf.Write(h[:])
}

func (r *Reader) ReadHash() (Hash, error) {
	var h Hash
	if _, err := io.ReadFull(r.r, h[:]); err != nil {
		return h, corrupt(err)
	}
	return h, nil
}
