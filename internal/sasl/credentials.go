// Package sasl implements the handful of SASL mechanisms RabbitMQ and most
// AMQP 0-9-1 brokers speak during connection.start/connection.start-ok:
// PLAIN, AMQPLAIN and EXTERNAL. Mechanism negotiation itself (matching a
// configured Credentials against the server's advertised list) lives in the
// connection package, which is the one with visibility into the handshake.
package sasl

import (
	"bytes"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// Credentials produces a mechanism name and the opaque SASL response bytes
// sent in connection.start-ok.
type Credentials interface {
	Mechanism() string
	Response() []byte
}

// PlainCredentials implements the SASL PLAIN mechanism: a response of
// "\x00username\x00password".
type PlainCredentials struct {
	User     string
	Password string
}

func (c PlainCredentials) Mechanism() string { return "PLAIN" }

func (c PlainCredentials) Response() []byte {
	var buf bytes.Buffer
	buf.WriteByte(0)
	buf.WriteString(c.User)
	buf.WriteByte(0)
	buf.WriteString(c.Password)
	return buf.Bytes()
}

// AMQPlainCredentials implements RabbitMQ's AMQPLAIN mechanism: the
// response is a field-table with LOGIN and PASSWORD longstr entries,
// serialized without its own length prefix (unlike a field-table value
// embedded in a content header).
type AMQPlainCredentials struct {
	User     string
	Password string
}

func (c AMQPlainCredentials) Mechanism() string { return "AMQPLAIN" }

func (c AMQPlainCredentials) Response() []byte {
	table := protocol.Table{
		"LOGIN":    c.User,
		"PASSWORD": c.Password,
	}
	buf := buffer.New()
	_ = protocol.WriteTable(buf, table)
	// WriteTable prefixes a 4-byte length; AMQPLAIN's response is the table
	// contents alone, so drop the length prefix RabbitMQ does not expect.
	data := buf.Data()
	if len(data) >= 4 {
		return data[4:]
	}
	return data
}

// ExternalCredentials implements SASL EXTERNAL: authentication is carried
// out of band (TLS client certificate), so the response is empty.
type ExternalCredentials struct{}

func (ExternalCredentials) Mechanism() string { return "EXTERNAL" }
func (ExternalCredentials) Response() []byte  { return nil }
