package frames

import (
	"errors"
	"fmt"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// Priority orders the outbound frame queue: channel control methods,
// connection.close, flow-control replies and heartbeats jump ahead of queued
// content frames so a channel under backpressure still answers them
// promptly. Handshake methods are written directly and never queued.
type Priority uint8

const (
	Low Priority = iota
	High
)

// ErrIncomplete is returned by ParseFrame when the buffer holds fewer bytes
// than the next full frame; callers keep reading from the socket and retry.
var ErrIncomplete = errors.New("amqp091: incomplete frame")

// Frame is a fully decoded protocol frame. Exactly one of Method, Header or
// Body is populated, selected by Type.
type Frame struct {
	Type    uint8
	Channel uint16
	Method  Method
	Header  *protocol.ContentHeader
	Body    []byte
}

// ParseFrame decodes the next frame from the front of r, returning
// ErrIncomplete if r does not yet hold a whole frame. On success the
// consumed bytes are removed from r.
func ParseFrame(r *buffer.Buffer) (Frame, error) {
	if r.Len() < 7 {
		return Frame{}, ErrIncomplete
	}
	head := r.Data()[:7]
	typ := head[0]
	channel := uint16(head[1])<<8 | uint16(head[2])
	size := uint32(head[3])<<24 | uint32(head[4])<<16 | uint32(head[5])<<8 | uint32(head[6])

	total := 7 + int(size) + 1
	if r.Len() < total {
		return Frame{}, ErrIncomplete
	}

	payload := make([]byte, size)
	copy(payload, r.Data()[7:7+int(size)])
	end := r.Data()[7+int(size)]
	r.Consume(total)

	if end != protocol.FrameEnd {
		return Frame{}, fmt.Errorf("amqp091: malformed frame, expected frame-end 0x%02x, got 0x%02x", protocol.FrameEnd, end)
	}

	fr := Frame{Type: typ, Channel: channel}
	inner := buffer.New()
	_, _ = inner.Write(payload)

	switch typ {
	case protocol.FrameMethod:
		classID, err := protocol.ReadShort(inner)
		if err != nil {
			return Frame{}, err
		}
		methodID, err := protocol.ReadShort(inner)
		if err != nil {
			return Frame{}, err
		}
		m, err := Decode(classID, methodID, inner)
		if err != nil {
			return Frame{}, err
		}
		fr.Method = m
	case protocol.FrameHeader:
		h, err := protocol.ReadContentHeader(inner)
		if err != nil {
			return Frame{}, err
		}
		fr.Header = &h
	case protocol.FrameBody:
		fr.Body = payload
	case protocol.FrameHeartbeat:
		// no payload
	default:
		return Frame{}, fmt.Errorf("amqp091: unknown frame type %d", typ)
	}
	return fr, nil
}

func writeEnvelope(w *buffer.Buffer, typ uint8, channel uint16, payload *buffer.Buffer) {
	protocol.WriteOctet(w, typ)
	protocol.WriteShort(w, channel)
	protocol.WriteLong(w, uint32(payload.Len()))
	_, _ = w.Write(payload.Data())
	protocol.WriteOctet(w, protocol.FrameEnd)
}

// WriteMethodFrame encodes m as a complete method frame on channel.
func WriteMethodFrame(w *buffer.Buffer, channel uint16, m Method) error {
	inner := buffer.New()
	protocol.WriteShort(inner, m.ClassID())
	protocol.WriteShort(inner, m.MethodID())
	if err := m.Marshal(inner); err != nil {
		return err
	}
	writeEnvelope(w, protocol.FrameMethod, channel, inner)
	return nil
}

// WriteHeaderFrame encodes a content-header frame for the basic class.
func WriteHeaderFrame(w *buffer.Buffer, channel uint16, bodySize uint64, props protocol.BasicProperties) error {
	inner := buffer.New()
	if err := protocol.WriteContentHeader(inner, protocol.ClassBasic, bodySize, props); err != nil {
		return err
	}
	writeEnvelope(w, protocol.FrameHeader, channel, inner)
	return nil
}

// WriteBodyFrame encodes a single body frame. Large bodies are split by the
// caller into frame-max-sized chunks, one WriteBodyFrame call each.
func WriteBodyFrame(w *buffer.Buffer, channel uint16, chunk []byte) {
	inner := buffer.New()
	_, _ = inner.Write(chunk)
	writeEnvelope(w, protocol.FrameBody, channel, inner)
}

// WriteHeartbeat encodes the zero-payload heartbeat frame, always on channel 0.
func WriteHeartbeat(w *buffer.Buffer) {
	writeEnvelope(w, protocol.FrameHeartbeat, 0, buffer.New())
}
