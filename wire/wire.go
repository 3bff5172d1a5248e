// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wire implements the canonical, deterministic binary encoding
// used for blocks, patches, and states. Re-encoding a decoded value
// yields byte-identical output, which is load-bearing: a block's
// content address is the hash of its own encoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/solidcoredata/tablechain/coreerr"
)

// Writer accumulates a canonical byte stream. All multi-byte integers are
// little-endian; all variable-length fields are length-prefixed with a
// uvarint.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated stream.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) WriteUvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *Writer) WriteInt64(v int64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	w.buf.Write(tmp[:])
}

func (w *Writer) WriteBytes(b []byte) {
	w.WriteUvarint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

func (w *Writer) WriteStrings(ss []string) {
	w.WriteUvarint(uint64(len(ss)))
	for _, s := range ss {
		w.WriteString(s)
	}
}

// Reader consumes a stream written by Writer, failing with coreerr.Corrupt
// on any malformed input rather than panicking.
type Reader struct {
	r *bytes.Reader
}

// NewReader wraps data for reading.
func NewReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data)}
}

// Remaining reports how many unread bytes are left. The top-level
// decoders (blocks, patches, states) do not consult it, so trailing bytes
// after a decoded value are ignored.
func (r *Reader) Remaining() int { return r.r.Len() }

func (r *Reader) ReadUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, corrupt(err)
	}
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return false, corrupt(err)
	}
	return b != 0, nil
}

func (r *Reader) ReadInt64() (int64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r.r, tmp[:]); err != nil {
		return 0, corrupt(err)
	}
	return int64(binary.LittleEndian.Uint64(tmp[:])), nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r.r, out); err != nil {
		return nil, corrupt(err)
	}
	return out, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) ReadStrings() ([]string, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func corrupt(err error) error {
	return coreerr.New(coreerr.Corrupt, err)
}

func corruptf(format string, args ...interface{}) error {
	return coreerr.Newf(coreerr.Corrupt, format, args...)
}
