package amqp

import "github.com/arrowstream/amqp091/internal/buffer"

// newOutputBuffer returns a fresh buffer sized for a typical small method
// frame; it grows on demand for larger payloads.
func newOutputBuffer() *buffer.Buffer {
	return buffer.NewWithCapacity(256)
}

// newInnerBuffer wraps an already-received payload slice so protocol
// decoders can read from it with the same Buffer API used for writing.
func newInnerBuffer(payload []byte) *buffer.Buffer {
	b := buffer.New()
	_, _ = b.Write(payload)
	return b
}
