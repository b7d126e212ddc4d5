package amqp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/arrowstream/amqp091/internal/protocol"
)

// Error is the taxonomy of failures the core surfaces to callers: transport
// failures, malformed frames, protocol-level refusals, and the caller
// misusing a handle in the wrong state.
type Error struct {
	Kind ErrorKind
	Code uint16 // AMQP reply code, set for ProtocolError and PreconditionFailed

	// ClassID and MethodID name the method the broker's connection.close or
	// channel.close was complaining about, carried straight off the wire.
	// Both are zero for errors with no such method to point at.
	ClassID  uint16
	MethodID uint16

	Reason string
	Cause  error
}

// ErrorKind classifies an Error without needing a type switch on causes.
type ErrorKind int

const (
	// IOError wraps a failure reading from or writing to the transport.
	IOError ErrorKind = iota
	// ParsingError means a frame could not be decoded off the wire.
	ParsingError
	// SerializationError means a frame could not be encoded for the wire.
	SerializationError
	// ProtocolError means the broker replied with a connection.close or
	// channel.close carrying a non-success reply code. NotifyClose also
	// reports a clean close as a ProtocolError with Code ReplySuccess.
	ProtocolError
	// InvalidConnectionState means an operation was attempted against a
	// Connection that is not in a state that permits it.
	InvalidConnectionState
	// InvalidChannelState means an operation was attempted against a
	// Channel that is not in a state that permits it.
	InvalidChannelState
	// PreconditionFailed means a caller-supplied argument violated an
	// invariant the core enforces locally (e.g. an invalid URI, or a
	// publisher-confirm tag that matches no pending publish).
	PreconditionFailed
	// UnexpectedReply means the broker replied with a method the core did
	// not expect for the outstanding request.
	UnexpectedReply
)

func (e *Error) Error() string {
	switch e.Kind {
	case ProtocolError:
		if e.ClassID != 0 || e.MethodID != 0 {
			return fmt.Sprintf("amqp091: server closed with code %d (class %d, method %d): %s",
				e.Code, e.ClassID, e.MethodID, e.Reason)
		}
		return fmt.Sprintf("amqp091: server closed with code %d: %s", e.Code, e.Reason)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("amqp091: %s: %v", e.Reason, e.Cause)
		}
		return fmt.Sprintf("amqp091: %s", e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func newIOError(cause error) *Error {
	return &Error{Kind: IOError, Reason: "i/o error", Cause: errors.WithStack(cause)}
}

func newParsingError(cause error) *Error {
	return &Error{Kind: ParsingError, Reason: "could not parse frame", Cause: errors.WithStack(cause)}
}

func newSerializationError(cause error) *Error {
	return &Error{Kind: SerializationError, Reason: "could not serialize frame", Cause: errors.WithStack(cause)}
}

func newProtocolError(code uint16, reason string, classID, methodID uint16) *Error {
	return &Error{Kind: ProtocolError, Code: code, ClassID: classID, MethodID: methodID, Reason: reason}
}

func newInvalidConnectionState(state ConnectionState) *Error {
	return &Error{Kind: InvalidConnectionState, Reason: fmt.Sprintf("connection is in state %s", state)}
}

func newInvalidChannelState(state ChannelState) *Error {
	return &Error{Kind: InvalidChannelState, Reason: fmt.Sprintf("channel is in state %s", state)}
}

func newPreconditionFailed(reason string) *Error {
	return &Error{Kind: PreconditionFailed, Code: protocol.PreconditionFailed, Reason: reason}
}

func newUnexpectedReply(want, got interface{}) *Error {
	return &Error{Kind: UnexpectedReply, Reason: fmt.Sprintf("expected %T, got %T", want, got)}
}

// ErrConnectionClosed is the error delivered to reply waiters still pending
// when the connection shuts down cleanly.
var ErrConnectionClosed = &Error{Kind: InvalidConnectionState, Reason: "connection closed"}

// ErrChannelClosed is the Channel analogue of ErrConnectionClosed.
var ErrChannelClosed = &Error{Kind: InvalidChannelState, Reason: "channel closed"}
