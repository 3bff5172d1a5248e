package patch

import (
	"sync"

	"github.com/solidcoredata/tablechain/store"
)

// Buffer wraps the bytes of a patch handed to a client. It exists to
// make the ownership contract — applied consumes the buffer, no
// exceptions — an explicit, testable property rather than an implicit
// convention: Release is idempotent and clears the underlying slice, so
// a caller that mistakenly keeps using a released Buffer observes an
// empty result instead of silently reusing freed data.
type Buffer struct {
	once sync.Once
	data []byte
}

// NewBuffer wraps data for a single Applied call.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the wrapped bytes. Calling it after Release returns nil.
func (b *Buffer) Bytes() []byte { return b.data }

// Release is safe to call more than once; only the first call has any
// effect.
func (b *Buffer) Release() {
	b.once.Do(func() { b.data = nil })
}

// Applied is the acknowledgement path: it decodes only the patch's
// header to extract the head hash, and when reported is true writes
// that hash to REPORTED. buf is always released before Applied returns,
// regardless of decode outcome or the value of reported.
func Applied(buf *Buffer, reported bool, st *store.Store) error {
	defer buf.Release()

	hdr, err := DecodeHeader(buf.Bytes())
	if err != nil {
		return err
	}
	if !reported {
		return nil
	}
	return st.WriteHash(store.REPORTED, hdr.HeadHash)
}
