package frames

import (
	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

type BasicQos struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func (BasicQos) ClassID() uint16  { return protocol.ClassBasic }
func (BasicQos) MethodID() uint16 { return 10 }
func (m BasicQos) Marshal(w *buffer.Buffer) error {
	protocol.WriteLong(w, m.PrefetchSize)
	protocol.WriteShort(w, m.PrefetchCount)
	protocol.WriteBool(w, m.Global)
	return nil
}

type BasicQosOk struct{}

func (BasicQosOk) ClassID() uint16               { return protocol.ClassBasic }
func (BasicQosOk) MethodID() uint16              { return 11 }
func (BasicQosOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassBasic, 11, func(r *buffer.Buffer) (Method, error) {
		return BasicQosOk{}, nil
	})
}

type BasicConsume struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   protocol.Table
}

func (BasicConsume) ClassID() uint16  { return protocol.ClassBasic }
func (BasicConsume) MethodID() uint16 { return 20 }
func (m BasicConsume) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoLocal)
	protocol.WriteBool(w, m.NoAck)
	protocol.WriteBool(w, m.Exclusive)
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type BasicConsumeOk struct {
	ConsumerTag string
}

func (BasicConsumeOk) ClassID() uint16  { return protocol.ClassBasic }
func (BasicConsumeOk) MethodID() uint16 { return 21 }
func (m BasicConsumeOk) Marshal(w *buffer.Buffer) error {
	return protocol.WriteShortString(w, m.ConsumerTag)
}

func init() {
	register(protocol.ClassBasic, 21, func(r *buffer.Buffer) (Method, error) {
		var m BasicConsumeOk
		var err error
		m.ConsumerTag, err = protocol.ReadShortString(r)
		return m, err
	})
}

type BasicCancel struct {
	ConsumerTag string
	NoWait      bool
}

func (BasicCancel) ClassID() uint16  { return protocol.ClassBasic }
func (BasicCancel) MethodID() uint16 { return 30 }
func (m BasicCancel) Marshal(w *buffer.Buffer) error {
	if err := protocol.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoWait)
	return nil
}

func init() {
	register(protocol.ClassBasic, 30, func(r *buffer.Buffer) (Method, error) {
		var m BasicCancel
		var err error
		if m.ConsumerTag, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		m.NoWait, err = protocol.ReadBool(r)
		return m, err
	})
}

type BasicCancelOk struct {
	ConsumerTag string
}

func (BasicCancelOk) ClassID() uint16  { return protocol.ClassBasic }
func (BasicCancelOk) MethodID() uint16 { return 31 }
func (m BasicCancelOk) Marshal(w *buffer.Buffer) error {
	return protocol.WriteShortString(w, m.ConsumerTag)
}

func init() {
	register(protocol.ClassBasic, 31, func(r *buffer.Buffer) (Method, error) {
		var m BasicCancelOk
		var err error
		m.ConsumerTag, err = protocol.ReadShortString(r)
		return m, err
	})
}

// BasicPublish is always immediately followed, in the connection's outbound
// frame queue, by a content-header frame and zero or more body frames; the
// three are assembled by the caller, not by this struct.
type BasicPublish struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func (BasicPublish) ClassID() uint16  { return protocol.ClassBasic }
func (BasicPublish) MethodID() uint16 { return 40 }
func (m BasicPublish) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	protocol.WriteBool(w, m.Mandatory)
	protocol.WriteBool(w, m.Immediate)
	return nil
}

func init() {
	register(protocol.ClassBasic, 40, func(r *buffer.Buffer) (Method, error) {
		var m BasicPublish
		var err error
		if _, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.Exchange, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.RoutingKey, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.Mandatory, err = protocol.ReadBool(r); err != nil {
			return nil, err
		}
		m.Immediate, err = protocol.ReadBool(r)
		return m, err
	})
}

type BasicReturn struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func (BasicReturn) ClassID() uint16  { return protocol.ClassBasic }
func (BasicReturn) MethodID() uint16 { return 50 }
func (m BasicReturn) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, m.ReplyCode)
	if err := protocol.WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return protocol.WriteShortString(w, m.RoutingKey)
}

func init() {
	register(protocol.ClassBasic, 50, func(r *buffer.Buffer) (Method, error) {
		var m BasicReturn
		var err error
		if m.ReplyCode, err = protocol.ReadShort(r); err != nil {
			return nil, err
		}
		if m.ReplyText, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.Exchange, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		m.RoutingKey, err = protocol.ReadShortString(r)
		return m, err
	})
}

type BasicDeliver struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func (BasicDeliver) ClassID() uint16  { return protocol.ClassBasic }
func (BasicDeliver) MethodID() uint16 { return 60 }
func (m BasicDeliver) Marshal(w *buffer.Buffer) error {
	if err := protocol.WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	protocol.WriteLonglong(w, m.DeliveryTag)
	protocol.WriteBool(w, m.Redelivered)
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return protocol.WriteShortString(w, m.RoutingKey)
}

func init() {
	register(protocol.ClassBasic, 60, func(r *buffer.Buffer) (Method, error) {
		var m BasicDeliver
		var err error
		if m.ConsumerTag, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.DeliveryTag, err = protocol.ReadLonglong(r); err != nil {
			return nil, err
		}
		if m.Redelivered, err = protocol.ReadBool(r); err != nil {
			return nil, err
		}
		if m.Exchange, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		m.RoutingKey, err = protocol.ReadShortString(r)
		return m, err
	})
}

type BasicGet struct {
	Queue  string
	NoAck  bool
}

func (BasicGet) ClassID() uint16  { return protocol.ClassBasic }
func (BasicGet) MethodID() uint16 { return 70 }
func (m BasicGet) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Queue); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoAck)
	return nil
}

type BasicGetOk struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func (BasicGetOk) ClassID() uint16  { return protocol.ClassBasic }
func (BasicGetOk) MethodID() uint16 { return 71 }
func (m BasicGetOk) Marshal(w *buffer.Buffer) error {
	protocol.WriteLonglong(w, m.DeliveryTag)
	protocol.WriteBool(w, m.Redelivered)
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	protocol.WriteLong(w, m.MessageCount)
	return nil
}

func init() {
	register(protocol.ClassBasic, 71, func(r *buffer.Buffer) (Method, error) {
		var m BasicGetOk
		var err error
		if m.DeliveryTag, err = protocol.ReadLonglong(r); err != nil {
			return nil, err
		}
		if m.Redelivered, err = protocol.ReadBool(r); err != nil {
			return nil, err
		}
		if m.Exchange, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		if m.RoutingKey, err = protocol.ReadShortString(r); err != nil {
			return nil, err
		}
		m.MessageCount, err = protocol.ReadLong(r)
		return m, err
	})
}

type BasicGetEmpty struct{}

func (BasicGetEmpty) ClassID() uint16               { return protocol.ClassBasic }
func (BasicGetEmpty) MethodID() uint16              { return 72 }
func (BasicGetEmpty) Marshal(w *buffer.Buffer) error { return protocol.WriteShortString(w, "") }

func init() {
	register(protocol.ClassBasic, 72, func(r *buffer.Buffer) (Method, error) {
		_, err := protocol.ReadShortString(r)
		return BasicGetEmpty{}, err
	})
}

type BasicAck struct {
	DeliveryTag uint64
	Multiple    bool
}

func (BasicAck) ClassID() uint16  { return protocol.ClassBasic }
func (BasicAck) MethodID() uint16 { return 80 }
func (m BasicAck) Marshal(w *buffer.Buffer) error {
	protocol.WriteLonglong(w, m.DeliveryTag)
	protocol.WriteBool(w, m.Multiple)
	return nil
}

func init() {
	register(protocol.ClassBasic, 80, func(r *buffer.Buffer) (Method, error) {
		var m BasicAck
		var err error
		if m.DeliveryTag, err = protocol.ReadLonglong(r); err != nil {
			return nil, err
		}
		m.Multiple, err = protocol.ReadBool(r)
		return m, err
	})
}

type BasicReject struct {
	DeliveryTag uint64
	Requeue     bool
}

func (BasicReject) ClassID() uint16  { return protocol.ClassBasic }
func (BasicReject) MethodID() uint16 { return 90 }
func (m BasicReject) Marshal(w *buffer.Buffer) error {
	protocol.WriteLonglong(w, m.DeliveryTag)
	protocol.WriteBool(w, m.Requeue)
	return nil
}

func init() {
	register(protocol.ClassBasic, 90, func(r *buffer.Buffer) (Method, error) {
		var m BasicReject
		var err error
		if m.DeliveryTag, err = protocol.ReadLonglong(r); err != nil {
			return nil, err
		}
		m.Requeue, err = protocol.ReadBool(r)
		return m, err
	})
}

type BasicRecoverAsync struct {
	Requeue bool
}

func (BasicRecoverAsync) ClassID() uint16  { return protocol.ClassBasic }
func (BasicRecoverAsync) MethodID() uint16 { return 100 }
func (m BasicRecoverAsync) Marshal(w *buffer.Buffer) error {
	protocol.WriteBool(w, m.Requeue)
	return nil
}

type BasicRecover struct {
	Requeue bool
}

func (BasicRecover) ClassID() uint16  { return protocol.ClassBasic }
func (BasicRecover) MethodID() uint16 { return 110 }
func (m BasicRecover) Marshal(w *buffer.Buffer) error {
	protocol.WriteBool(w, m.Requeue)
	return nil
}

type BasicRecoverOk struct{}

func (BasicRecoverOk) ClassID() uint16               { return protocol.ClassBasic }
func (BasicRecoverOk) MethodID() uint16              { return 111 }
func (BasicRecoverOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassBasic, 111, func(r *buffer.Buffer) (Method, error) {
		return BasicRecoverOk{}, nil
	})
}

// BasicNack is the RabbitMQ extension covering multi-message and
// requeue-on-reject semantics that basic.reject lacks.
type BasicNack struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func (BasicNack) ClassID() uint16  { return protocol.ClassBasic }
func (BasicNack) MethodID() uint16 { return 120 }
func (m BasicNack) Marshal(w *buffer.Buffer) error {
	protocol.WriteLonglong(w, m.DeliveryTag)
	protocol.WriteBool(w, m.Multiple)
	protocol.WriteBool(w, m.Requeue)
	return nil
}

func init() {
	register(protocol.ClassBasic, 120, func(r *buffer.Buffer) (Method, error) {
		var m BasicNack
		var err error
		if m.DeliveryTag, err = protocol.ReadLonglong(r); err != nil {
			return nil, err
		}
		if m.Multiple, err = protocol.ReadBool(r); err != nil {
			return nil, err
		}
		m.Requeue, err = protocol.ReadBool(r)
		return m, err
	})
}
