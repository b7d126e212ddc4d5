// Package frames implements the AMQP 0-9-1 method table as a tagged sum of
// Go structs (one per method) plus the frame envelope and priority queue
// ordering used to serialize them: a mechanically regeneratable table, kept
// free of connection/channel state-machine logic.
package frames

import (
	"fmt"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// Method is implemented by every AMQP method argument struct.
type Method interface {
	ClassID() uint16
	MethodID() uint16
	Marshal(w *buffer.Buffer) error
}

type methodKey struct {
	class  uint16
	method uint16
}

var decoders = map[methodKey]func(r *buffer.Buffer) (Method, error){}

func register(class, method uint16, fn func(r *buffer.Buffer) (Method, error)) {
	decoders[methodKey{class, method}] = fn
}

// Decode looks up and runs the decoder registered for (classID, methodID).
func Decode(classID, methodID uint16, r *buffer.Buffer) (Method, error) {
	fn, ok := decoders[methodKey{classID, methodID}]
	if !ok {
		return nil, fmt.Errorf("amqp091: unknown method %d:%d", classID, methodID)
	}
	return fn(r)
}

// --- connection class (10) ---

type ConnectionStart struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties protocol.Table
	Mechanisms       string
	Locales          string
}

func (ConnectionStart) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionStart) MethodID() uint16 { return 10 }
func (m ConnectionStart) Marshal(w *buffer.Buffer) error {
	protocol.WriteOctet(w, m.VersionMajor)
	protocol.WriteOctet(w, m.VersionMinor)
	if err := protocol.WriteTable(w, m.ServerProperties); err != nil {
		return err
	}
	if err := protocol.WriteLongString(w, m.Mechanisms); err != nil {
		return err
	}
	return protocol.WriteLongString(w, m.Locales)
}

func init() {
	register(protocol.ClassConnection, 10, func(r *buffer.Buffer) (Method, error) {
		var m ConnectionStart
		var err error
		if m.VersionMajor, err = protocol.ReadOctet(r); err != nil {
			return nil, err
		}
		if m.VersionMinor, err = protocol.ReadOctet(r); err != nil {
			return nil, err
		}
		if m.ServerProperties, err = protocol.ReadTable(r); err != nil {
			return nil, err
		}
		if m.Mechanisms, err = protocol.ReadLongString(r); err != nil {
			return nil, err
		}
		if m.Locales, err = protocol.ReadLongString(r); err != nil {
			return nil, err
		}
		return m, nil
	})
}

type ConnectionStartOk struct {
	ClientProperties protocol.Table
	Mechanism        string
	Response         string
	Locale           string
}

func (ConnectionStartOk) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionStartOk) MethodID() uint16 { return 11 }
func (m ConnectionStartOk) Marshal(w *buffer.Buffer) error {
	if err := protocol.WriteTable(w, m.ClientProperties); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Mechanism); err != nil {
		return err
	}
	if err := protocol.WriteLongString(w, m.Response); err != nil {
		return err
	}
	return protocol.WriteShortString(w, m.Locale)
}

type ConnectionSecure struct {
	Challenge string
}

func (ConnectionSecure) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionSecure) MethodID() uint16 { return 20 }
func (m ConnectionSecure) Marshal(w *buffer.Buffer) error { return protocol.WriteLongString(w, m.Challenge) }

func init() {
	register(protocol.ClassConnection, 20, func(r *buffer.Buffer) (Method, error) {
		var m ConnectionSecure
		var err error
		m.Challenge, err = protocol.ReadLongString(r)
		return m, err
	})
}

type ConnectionSecureOk struct {
	Response string
}

func (ConnectionSecureOk) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionSecureOk) MethodID() uint16 { return 21 }
func (m ConnectionSecureOk) Marshal(w *buffer.Buffer) error { return protocol.WriteLongString(w, m.Response) }

type ConnectionTune struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (ConnectionTune) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionTune) MethodID() uint16 { return 30 }
func (m ConnectionTune) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, m.ChannelMax)
	protocol.WriteLong(w, m.FrameMax)
	protocol.WriteShort(w, m.Heartbeat)
	return nil
}

func init() {
	register(protocol.ClassConnection, 30, func(r *buffer.Buffer) (Method, error) {
		var m ConnectionTune
		var err error
		if m.ChannelMax, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.FrameMax, err = protocol.ReadLong(r); err != nil {
			return nil, err
		}
		if m.Heartbeat, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		return m, nil
	})
}

type ConnectionTuneOk struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func (ConnectionTuneOk) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionTuneOk) MethodID() uint16 { return 31 }
func (m ConnectionTuneOk) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, m.ChannelMax)
	protocol.WriteLong(w, m.FrameMax)
	protocol.WriteShort(w, m.Heartbeat)
	return nil
}

type ConnectionOpen struct {
	VirtualHost string
}

func (ConnectionOpen) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionOpen) MethodID() uint16 { return 40 }
func (m ConnectionOpen) Marshal(w *buffer.Buffer) error {
	if err := protocol.WriteShortString(w, m.VirtualHost); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, ""); err != nil { // reserved "capabilities"
		return err
	}
	protocol.WriteBool(w, false) // reserved "insist"
	return nil
}

type ConnectionOpenOk struct{}

func (ConnectionOpenOk) ClassID() uint16                     { return protocol.ClassConnection }
func (ConnectionOpenOk) MethodID() uint16                    { return 41 }
func (ConnectionOpenOk) Marshal(w *buffer.Buffer) error { return protocol.WriteShortString(w, "") }

func init() {
	register(protocol.ClassConnection, 41, func(r *buffer.Buffer) (Method, error) {
		_, err := protocol.ReadShortString(r)
		return ConnectionOpenOk{}, err
	})
}

type ConnectionClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID_  uint16
	MethodID_ uint16
}

func (ConnectionClose) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionClose) MethodID() uint16 { return 50 }
func (m ConnectionClose) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, m.ReplyCode)
	if err := protocol.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	protocol.WriteShort(w, m.ClassID_)
	protocol.WriteShort(w, m.MethodID_)
	return nil
}

func init() {
	register(protocol.ClassConnection, 50, func(r *buffer.Buffer) (Method, error) {
		var m ConnectionClose
		var err error
		if m.ReplyCode, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.ReplyText, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.ClassID_, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.MethodID_, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		return m, nil
	})
}

type ConnectionCloseOk struct{}

func (ConnectionCloseOk) ClassID() uint16               { return protocol.ClassConnection }
func (ConnectionCloseOk) MethodID() uint16               { return 51 }
func (ConnectionCloseOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassConnection, 51, func(r *buffer.Buffer) (Method, error) {
		return ConnectionCloseOk{}, nil
	})
}

type ConnectionBlocked struct {
	Reason string
}

func (ConnectionBlocked) ClassID() uint16  { return protocol.ClassConnection }
func (ConnectionBlocked) MethodID() uint16 { return 60 }
func (m ConnectionBlocked) Marshal(w *buffer.Buffer) error { return protocol.WriteShortString(w, m.Reason) }

func init() {
	register(protocol.ClassConnection, 60, func(r *buffer.Buffer) (Method, error) {
		var m ConnectionBlocked
		var err error
		m.Reason, err = protocol.ReadShortString(r)
		return m, err
	})
}

type ConnectionUnblocked struct{}

func (ConnectionUnblocked) ClassID() uint16               { return protocol.ClassConnection }
func (ConnectionUnblocked) MethodID() uint16              { return 61 }
func (ConnectionUnblocked) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassConnection, 61, func(r *buffer.Buffer) (Method, error) {
		return ConnectionUnblocked{}, nil
	})
}

// --- channel class (20) ---

type ChannelOpen struct{}

func (ChannelOpen) ClassID() uint16               { return protocol.ClassChannel }
func (ChannelOpen) MethodID() uint16              { return 10 }
func (ChannelOpen) Marshal(w *buffer.Buffer) error { return protocol.WriteShortString(w, "") }

type ChannelOpenOk struct{}

func (ChannelOpenOk) ClassID() uint16               { return protocol.ClassChannel }
func (ChannelOpenOk) MethodID() uint16              { return 11 }
func (ChannelOpenOk) Marshal(w *buffer.Buffer) error { return protocol.WriteLongString(w, "") }

func init() {
	register(protocol.ClassChannel, 11, func(r *buffer.Buffer) (Method, error) {
		_, err := protocol.ReadLongString(r)
		return ChannelOpenOk{}, err
	})
}

type ChannelFlow struct {
	Active bool
}

func (ChannelFlow) ClassID() uint16  { return protocol.ClassChannel }
func (ChannelFlow) MethodID() uint16 { return 20 }
func (m ChannelFlow) Marshal(w *buffer.Buffer) error {
	protocol.WriteBool(w, m.Active)
	return nil
}

func init() {
	register(protocol.ClassChannel, 20, func(r *buffer.Buffer) (Method, error) {
		var m ChannelFlow
		var err error
		m.Active, err = protocol.ReadBool(r)
		return m, err
	})
}

type ChannelFlowOk struct {
	Active bool
}

func (ChannelFlowOk) ClassID() uint16  { return protocol.ClassChannel }
func (ChannelFlowOk) MethodID() uint16 { return 21 }
func (m ChannelFlowOk) Marshal(w *buffer.Buffer) error {
	protocol.WriteBool(w, m.Active)
	return nil
}

func init() {
	register(protocol.ClassChannel, 21, func(r *buffer.Buffer) (Method, error) {
		var m ChannelFlowOk
		var err error
		m.Active, err = protocol.ReadBool(r)
		return m, err
	})
}

type ChannelClose struct {
	ReplyCode uint16
	ReplyText string
	ClassID_  uint16
	MethodID_ uint16
}

func (ChannelClose) ClassID() uint16  { return protocol.ClassChannel }
func (ChannelClose) MethodID() uint16 { return 40 }
func (m ChannelClose) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, m.ReplyCode)
	if err := protocol.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	protocol.WriteShort(w, m.ClassID_)
	protocol.WriteShort(w, m.MethodID_)
	return nil
}

func init() {
	register(protocol.ClassChannel, 40, func(r *buffer.Buffer) (Method, error) {
		var m ChannelClose
		var err error
		if m.ReplyCode, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.ReplyText, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.ClassID_, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.MethodID_, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		return m, nil
	})
}

type ChannelCloseOk struct{}

func (ChannelCloseOk) ClassID() uint16               { return protocol.ClassChannel }
func (ChannelCloseOk) MethodID() uint16              { return 41 }
func (ChannelCloseOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassChannel, 41, func(r *buffer.Buffer) (Method, error) {
		return ChannelCloseOk{}, nil
	})
}

func init() {
	register(protocol.ClassChannel, 10, func(r *buffer.Buffer) (Method, error) {
		_, err := protocol.ReadShortString(r)
		return ChannelOpen{}, err
	})
}
