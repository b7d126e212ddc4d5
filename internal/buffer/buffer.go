// Package buffer implements the growable byte ring used to stream frames
// between the socket and the protocol parser/serializer.
package buffer

import "encoding/binary"

// Buffer is a growable byte buffer with a single end cursor. Unread bytes
// always live in [0:end): Data() exposes them, Space() exposes the writable
// tail, and Consume() moves the remainder back to offset 0, so Shift() has
// nothing left to compact.
type Buffer struct {
	buf []byte
	end int
}

// New returns an empty Buffer with no preallocated capacity.
func New() *Buffer {
	return &Buffer{}
}

// NewWithCapacity returns an empty Buffer with capacity preallocated.
func NewWithCapacity(capacity int) *Buffer {
	return &Buffer{buf: make([]byte, capacity)}
}

// Grow ensures the buffer's capacity is at least capacity, preserving any
// unread bytes.
func (b *Buffer) Grow(capacity int) {
	if cap(b.buf) >= capacity {
		return
	}
	next := make([]byte, capacity)
	copy(next, b.buf[:b.end])
	b.buf = next
}

// Data returns the currently unread bytes. The slice is only valid until
// the next call to Consume, Fill, Shift, or Grow.
func (b *Buffer) Data() []byte {
	return b.buf[:b.end]
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return b.end
}

// Space returns the writable tail of the buffer: bytes written here and
// then passed to Fill become part of Data.
func (b *Buffer) Space() []byte {
	return b.buf[b.end:]
}

// Available reports how many bytes can be written via Space without
// growing the buffer.
func (b *Buffer) Available() int {
	return len(b.buf) - b.end
}

// Fill marks n bytes, just written into Space, as readable.
func (b *Buffer) Fill(n int) {
	b.end += n
}

// Consume discards the first n unread bytes, shifting the remainder down.
func (b *Buffer) Consume(n int) {
	if n <= 0 {
		return
	}
	if n >= b.end {
		b.end = 0
		return
	}
	copy(b.buf, b.buf[n:b.end])
	b.end -= n
}

// Shift compacts the buffer: it is a no-op here because Consume already
// keeps unread bytes at offset 0, but it is kept as a named operation
// (mirroring the streaming buffer this protocol's original implementation
// uses) so callers can request compaction without caring which operation
// performs it.
func (b *Buffer) Shift() {}

// ShiftUnlessAvailable grows the buffer if fewer than n bytes of space
// remain, so a caller about to write up to n bytes never has to retry
// because of lack of space, only because of short reads/writes.
func (b *Buffer) ShiftUnlessAvailable(n int) {
	if b.Available() < n {
		b.Grow(b.end + n)
	}
}

// Reset discards all unread bytes without releasing capacity.
func (b *Buffer) Reset() {
	b.end = 0
}

// Next returns up to n unread bytes and consumes them.
func (b *Buffer) Next(n int) []byte {
	if n > b.end {
		n = b.end
	}
	out := append([]byte(nil), b.buf[:n]...)
	b.Consume(n)
	return out
}

// Write appends p to the buffer, growing it if necessary, and returns
// len(p), nil to satisfy io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.ShiftUnlessAvailable(len(p))
	n := copy(b.Space(), p)
	b.Fill(n)
	return n, nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	_, err := b.Write([]byte{c})
	return err
}

// WriteUint16 appends v in network byte order.
func (b *Buffer) WriteUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	_, _ = b.Write(tmp[:])
}

// WriteUint32 appends v in network byte order.
func (b *Buffer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	_, _ = b.Write(tmp[:])
}

// WriteUint64 appends v in network byte order.
func (b *Buffer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	_, _ = b.Write(tmp[:])
}

// Bytes returns the full backing slice of unread bytes, equivalent to Data.
func (b *Buffer) Bytes() []byte {
	return b.Data()
}
