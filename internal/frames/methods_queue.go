package frames

import (
	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

type QueueDeclare struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  protocol.Table
}

func (QueueDeclare) ClassID() uint16  { return protocol.ClassQueue }
func (QueueDeclare) MethodID() uint16 { return 10 }
func (m QueueDeclare) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	protocol.WriteBool(w, m.Passive)
	protocol.WriteBool(w, m.Durable)
	protocol.WriteBool(w, m.Exclusive)
	protocol.WriteBool(w, m.AutoDelete)
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type QueueDeclareOk struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func (QueueDeclareOk) ClassID() uint16  { return protocol.ClassQueue }
func (QueueDeclareOk) MethodID() uint16 { return 11 }
func (m QueueDeclareOk) Marshal(w *buffer.Buffer) error {
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	protocol.WriteLong(w, m.MessageCount)
	protocol.WriteLong(w, m.ConsumerCount)
	return nil
}

func init() {
	register(protocol.ClassQueue, 11, func(r *buffer.Buffer) (Method, error) {
		var m QueueDeclareOk
		var err error
		if m.Queue, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.MessageCount, err = protocol.ReadLong(r); err != nil {
			return nil, err
		}
		if m.ConsumerCount, err = protocol.ReadLong(r); err != nil {
			return nil, err
		}
		return m, nil
	})
}

type QueueBind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  protocol.Table
}

func (QueueBind) ClassID() uint16  { return protocol.ClassQueue }
func (QueueBind) MethodID() uint16 { return 20 }
func (m QueueBind) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type QueueBindOk struct{}

func (QueueBindOk) ClassID() uint16               { return protocol.ClassQueue }
func (QueueBindOk) MethodID() uint16              { return 21 }
func (QueueBindOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassQueue, 21, func(r *buffer.Buffer) (Method, error) {
		return QueueBindOk{}, nil
	})
}

type QueueUnbind struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  protocol.Table
}

func (QueueUnbind) ClassID() uint16  { return protocol.ClassQueue }
func (QueueUnbind) MethodID() uint16 { return 50 }
func (m QueueUnbind) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return protocol.WriteTable(w, m.Arguments)
}

type QueueUnbindOk struct{}

func (QueueUnbindOk) ClassID() uint16               { return protocol.ClassQueue }
func (QueueUnbindOk) MethodID() uint16              { return 51 }
func (QueueUnbindOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassQueue, 51, func(r *buffer.Buffer) (Method, error) {
		return QueueUnbindOk{}, nil
	})
}

type QueuePurge struct {
	Queue  string
	NoWait bool
}

func (QueuePurge) ClassID() uint16  { return protocol.ClassQueue }
func (QueuePurge) MethodID() uint16 { return 30 }
func (m QueuePurge) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoWait)
	return nil
}

type QueuePurgeOk struct {
	MessageCount uint32
}

func (QueuePurgeOk) ClassID() uint16  { return protocol.ClassQueue }
func (QueuePurgeOk) MethodID() uint16 { return 31 }
func (m QueuePurgeOk) Marshal(w *buffer.Buffer) error {
	protocol.WriteLong(w, m.MessageCount)
	return nil
}

func init() {
	register(protocol.ClassQueue, 31, func(r *buffer.Buffer) (Method, error) {
		var m QueuePurgeOk
		var err error
		m.MessageCount, err = protocol.ReadLong(r)
		return m, err
	})
}

type QueueDelete struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func (QueueDelete) ClassID() uint16  { return protocol.ClassQueue }
func (QueueDelete) MethodID() uint16 { return 40 }
func (m QueueDelete) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	protocol.WriteBool(w, m.IfUnused)
	protocol.WriteBool(w, m.IfEmpty)
	protocol.WriteBool(w, m.NoWait)
	return nil
}

type QueueDeleteOk struct {
	MessageCount uint32
}

func (QueueDeleteOk) ClassID() uint16  { return protocol.ClassQueue }
func (QueueDeleteOk) MethodID() uint16 { return 41 }
func (m QueueDeleteOk) Marshal(w *buffer.Buffer) error {
	protocol.WriteLong(w, m.MessageCount)
	return nil
}

func init() {
	register(protocol.ClassQueue, 41, func(r *buffer.Buffer) (Method, error) {
		var m QueueDeleteOk
		var err error
		m.MessageCount, err = protocol.ReadLong(r)
		return m, err
	})
}
