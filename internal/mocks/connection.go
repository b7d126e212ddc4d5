// Package mocks provides a net.Conn double driven by a responder callback,
// so connection and channel tests can exercise the real handshake and
// frame-dispatch code without a broker.
package mocks

import (
	"errors"
	"net"
	"time"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/frames"
)

// Frame is what a Write call decodes into before reaching the responder:
// either the eight-byte protocol header that opens every connection, or one
// fully parsed AMQP frame.
type Frame struct {
	ProtocolHeader []byte
	Frame          frames.Frame
}

// IsProtocolHeader reports whether this Frame is the initial handshake
// header rather than a decoded method/header/body/heartbeat frame.
func (f Frame) IsProtocolHeader() bool { return f.ProtocolHeader != nil }

// NewConnection returns a Connection whose Write calls are answered by resp.
// Return a nil slice and nil error to swallow a frame with no reply; return
// a non-nil error to simulate the broker severing the connection.
func NewConnection(resp func(Frame) ([]byte, error)) *Connection {
	return &Connection{
		resp:      resp,
		readData:  make(chan []byte, 16),
		readClose: make(chan struct{}),
	}
}

// Connection is a net.Conn double. Read, Write and Close are all invoked
// from separate goroutines by the real connection under test (reader loop,
// writer loop, Close/shutdown), matching how a real net.Conn is used.
type Connection struct {
	resp      func(Frame) ([]byte, error)
	readData  chan []byte
	readClose chan struct{}
	closed    bool
}

// Read blocks until a response is queued by Write or the connection closes.
func (m *Connection) Read(b []byte) (int, error) {
	select {
	case <-m.readClose:
		return 0, errors.New("mocks: connection closed")
	default:
	}
	select {
	case <-m.readClose:
		return 0, errors.New("mocks: connection closed")
	case rd := <-m.readData:
		return copy(b, rd), nil
	}
}

// Write decodes the bytes the connection under test sent and passes them to
// the responder, queuing whatever it returns for the next Read.
func (m *Connection) Write(b []byte) (int, error) {
	select {
	case <-m.readClose:
		return 0, errors.New("mocks: connection closed")
	default:
	}

	fr, err := decode(b)
	if err != nil {
		return 0, err
	}
	resp, err := m.resp(fr)
	if err != nil {
		return 0, err
	}
	if resp != nil {
		m.readData <- resp
	}
	return len(b), nil
}

// InjectRead queues bytes for the next Read independently of Write, for
// simulating a broker-initiated push (basic.deliver, basic.return,
// connection.close) that was never a direct reply to something written.
func (m *Connection) InjectRead(b []byte) {
	m.readData <- b
}

// Close unblocks any pending Read with an error, as a real closed socket would.
func (m *Connection) Close() error {
	if m.closed {
		return errors.New("mocks: double close")
	}
	m.closed = true
	close(m.readClose)
	return nil
}

func (m *Connection) LocalAddr() net.Addr  { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (m *Connection) RemoteAddr() net.Addr { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 1)} }

func (m *Connection) SetDeadline(t time.Time) error      { return nil }
func (m *Connection) SetReadDeadline(t time.Time) error  { return nil }
func (m *Connection) SetWriteDeadline(t time.Time) error { return nil }

func decode(b []byte) (Frame, error) {
	if len(b) == 8 && b[0] == 'A' && b[1] == 'M' && b[2] == 'Q' && b[3] == 'P' {
		return Frame{ProtocolHeader: append([]byte(nil), b...)}, nil
	}
	buf := buffer.New()
	_, _ = buf.Write(b)
	fr, err := frames.ParseFrame(buf)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Frame: fr}, nil
}
