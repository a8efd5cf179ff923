// Copyright 2024 The go-morph Authors
// This file is part of the go-morph library.
//
// The go-morph library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-morph library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-morph library. If not, see <http://www.gnu.org/licenses/>.

package common

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortLayout is returned when a fixed layout runs out of bytes.
	ErrShortLayout = errors.New("account data too short")
	// ErrStringTooLong is returned when an encoded string exceeds its bound.
	ErrStringTooLong = errors.New("string exceeds maximum length")
)

// LayoutWriter appends little-endian fixed-layout fields, the on-ledger
// encoding of program owned account payloads and instruction arguments.
// Strings and byte slices carry a u32 length prefix.
type LayoutWriter struct {
	buf []byte
}

// NewLayoutWriter creates a writer with the given capacity hint.
func NewLayoutWriter(size int) *LayoutWriter {
	return &LayoutWriter{buf: make([]byte, 0, size)}
}

func (w *LayoutWriter) Raw(b []byte) *LayoutWriter {
	w.buf = append(w.buf, b...)
	return w
}

func (w *LayoutWriter) U8(v uint8) *LayoutWriter {
	w.buf = append(w.buf, v)
	return w
}

func (w *LayoutWriter) Bool(v bool) *LayoutWriter {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *LayoutWriter) U32(v uint32) *LayoutWriter {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *LayoutWriter) U64(v uint64) *LayoutWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *LayoutWriter) Address(a Address) *LayoutWriter {
	return w.Raw(a[:])
}

func (w *LayoutWriter) String(s string) *LayoutWriter {
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *LayoutWriter) Bytes() []byte {
	return w.buf
}

// LayoutReader consumes fields written by LayoutWriter. The first error
// sticks; callers check Err once after reading all fields.
type LayoutReader struct {
	buf []byte
	off int
	err error
}

// NewLayoutReader creates a reader over b.
func NewLayoutReader(b []byte) *LayoutReader {
	return &LayoutReader{buf: b}
}

func (r *LayoutReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortLayout, n, r.off, len(r.buf))
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *LayoutReader) Raw(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *LayoutReader) U8() uint8 {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *LayoutReader) Bool() bool {
	return r.U8() != 0
}

func (r *LayoutReader) U32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *LayoutReader) U64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *LayoutReader) Address() Address {
	if b := r.take(AddressLength); b != nil {
		return BytesToAddress(b)
	}
	return Address{}
}

// String reads a length prefixed string no longer than max bytes.
func (r *LayoutReader) String(max int) string {
	n := r.U32()
	if r.err != nil {
		return ""
	}
	if int(n) > max {
		r.err = fmt.Errorf("%w: %d > %d", ErrStringTooLong, n, max)
		return ""
	}
	return string(r.take(int(n)))
}

// Err returns the first decoding error encountered.
func (r *LayoutReader) Err() error {
	return r.err
}

// Remaining returns the number of unread bytes.
func (r *LayoutReader) Remaining() int {
	return len(r.buf) - r.off
}
