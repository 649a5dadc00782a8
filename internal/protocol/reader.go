package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrTruncated = errors.New("protocol: truncated packet")

// Reader decodes little-endian primitives from a packet payload. Errors
// are sticky: after the first short read every accessor returns the zero
// value and Err reports the failure, so parse code stays linear.
type Reader struct {
	buf []byte
	pos int
	err error
}

func NewReader(payload []byte) *Reader {
	return &Reader{buf: payload}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.pos, len(r.buf)-r.pos)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) Int32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

func (r *Reader) Int64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

// String reads an int32 length prefix followed by UTF-8 bytes.
func (r *Reader) String() string {
	n := r.Int32()
	if r.err != nil {
		return ""
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: negative string length %d", ErrTruncated, n)
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// Skip discards n bytes of padding.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) Err() error {
	return r.err
}
