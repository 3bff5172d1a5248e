package wire

import (
	"github.com/klauspost/compress/zstd"

	"github.com/solidcoredata/tablechain/coreerr"
)

// envelope flag bytes prefixed to every compressible payload, so a
// decoder can accept both compressed and uncompressed forms
// transparently.
const (
	envelopeRaw  byte = 0
	envelopeZstd byte = 1
)

// Compression carries the optional generic block compressor settings.
// A zero value means "disabled".
type Compression struct {
	Enabled bool
	Level   int // codec-specific; 0 selects the codec default.
}

func (c Compression) level() zstd.EncoderLevel {
	switch c.Level {
	case 0:
		return zstd.SpeedDefault
	case 1:
		return zstd.SpeedFastest
	case 2:
		return zstd.SpeedDefault
	case 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Envelope wraps inner with an envelope byte and, if c.Enabled, the
// zstd-compressed form. When disabled, inner is stored directly behind
// the raw-envelope marker.
func Envelope(inner []byte, c Compression) ([]byte, error) {
	if !c.Enabled {
		return append([]byte{envelopeRaw}, inner...), nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(c.level()))
	if err != nil {
		return nil, coreerr.New(coreerr.Io, err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(inner, make([]byte, 0, len(inner)))
	return append([]byte{envelopeZstd}, compressed...), nil
}

// Unenvelope reverses Envelope, transparently accepting either form
// regardless of the caller's current Compression setting.
func Unenvelope(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, coreerr.Newf(coreerr.Corrupt, "wire: empty envelope")
	}
	flag, body := data[0], data[1:]
	switch flag {
	case envelopeRaw:
		return body, nil
	case envelopeZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, coreerr.New(coreerr.Io, err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, coreerr.New(coreerr.Corrupt, err)
		}
		return out, nil
	default:
		return nil, coreerr.Newf(coreerr.Corrupt, "wire: unknown envelope flag %d", flag)
	}
}
