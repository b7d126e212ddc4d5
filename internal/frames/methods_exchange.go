package frames

import (
	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

type ExchangeDeclare struct {
	Exchange   string
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  protocol.Table
}

func (ExchangeDeclare) ClassID() uint16  { return protocol.ClassExchange }
func (ExchangeDeclare) MethodID() uint16 { return 10 }
func (m ExchangeDeclare) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0) // reserved "ticket"
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Type); err != nil {
		return err
	}
	protocol.WriteBool(w, m.Passive)
	protocol.WriteBool(w, m.Durable)
	protocol.WriteBool(w, m.AutoDelete)
	protocol.WriteBool(w, m.Internal)
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type ExchangeDeclareOk struct{}

func (ExchangeDeclareOk) ClassID() uint16               { return protocol.ClassExchange }
func (ExchangeDeclareOk) MethodID() uint16              { return 11 }
func (ExchangeDeclareOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassExchange, 11, func(r *buffer.Buffer) (Method, error) {
		return ExchangeDeclareOk{}, nil
	})
}

type ExchangeDelete struct {
	Exchange string
	IfUnused bool
	NoWait   bool
}

func (ExchangeDelete) ClassID() uint16  { return protocol.ClassExchange }
func (ExchangeDelete) MethodID() uint16 { return 20 }
func (m ExchangeDelete) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	protocol.WriteBool(w, m.IfUnused)
	protocol.WriteBool(w, m.NoWait)
	return nil
}

type ExchangeDeleteOk struct{}

func (ExchangeDeleteOk) ClassID() uint16               { return protocol.ClassExchange }
func (ExchangeDeleteOk) MethodID() uint16              { return 21 }
func (ExchangeDeleteOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassExchange, 21, func(r *buffer.Buffer) (Method, error) {
		return ExchangeDeleteOk{}, nil
	})
}

type ExchangeBind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   protocol.Table
}

func (ExchangeBind) ClassID() uint16  { return protocol.ClassExchange }
func (ExchangeBind) MethodID() uint16 { return 30 }
func (m ExchangeBind) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Source); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type ExchangeBindOk struct{}

func (ExchangeBindOk) ClassID() uint16               { return protocol.ClassExchange }
func (ExchangeBindOk) MethodID() uint16              { return 31 }
func (ExchangeBindOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassExchange, 31, func(r *buffer.Buffer) (Method, error) {
		return ExchangeBindOk{}, nil
	})
}

type ExchangeUnbind struct {
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   protocol.Table
}

func (ExchangeUnbind) ClassID() uint16  { return protocol.ClassExchange }
func (ExchangeUnbind) MethodID() uint16 { return 40 }
func (m ExchangeUnbind) Marshal(w *buffer.Buffer) error {
	protocol.WriteShort(w, 0)
	if err := protocol.WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.Source); err != nil {
		return err
	}
	if err := protocol.WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	protocol.WriteBool(w, m.NoWait)
	return protocol.WriteTable(w, m.Arguments)
}

type ExchangeUnbindOk struct{}

func (ExchangeUnbindOk) ClassID() uint16               { return protocol.ClassExchange }
func (ExchangeUnbindOk) MethodID() uint16              { return 51 }
func (ExchangeUnbindOk) Marshal(w *buffer.Buffer) error { return nil }

func init() {
	register(protocol.ClassExchange, 51, func(r *buffer.Buffer) (Method, error) {
		return ExchangeUnbindOk{}, nil
	})
}
