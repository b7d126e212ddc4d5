package amqp

import "sync"

// ConnectionState is the connection's position in the AMQP handshake and
// lifecycle: protocol header, SASL exchange, tuning, open, steady-state,
// and eventual close.
type ConnectionState int

const (
	ConnectionInitial ConnectionState = iota
	ConnectionSentProtocolHeader
	ConnectionSentStartOk
	ConnectionSentSecureOk
	ConnectionSentTuneOk
	ConnectionSentOpen
	ConnectionConnected
	ConnectionClosing
	ConnectionClosed
	ConnectionError
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionInitial:
		return "initial"
	case ConnectionSentProtocolHeader:
		return "sent-protocol-header"
	case ConnectionSentStartOk:
		return "sent-start-ok"
	case ConnectionSentSecureOk:
		return "sent-secure-ok"
	case ConnectionSentTuneOk:
		return "sent-tune-ok"
	case ConnectionSentOpen:
		return "sent-open"
	case ConnectionConnected:
		return "connected"
	case ConnectionClosing:
		return "closing"
	case ConnectionClosed:
		return "closed"
	case ConnectionError:
		return "error"
	default:
		return "unknown"
	}
}

// ConnectionStatus guards the connection's state machine the way
// ChannelStatus guards a channel's.
type ConnectionStatus struct {
	mu       sync.Mutex
	state    ConnectionState
	err      error
	blocked  bool
	blockReason string
}

// NewConnectionStatus returns a status starting at ConnectionInitial.
func NewConnectionStatus() *ConnectionStatus {
	return &ConnectionStatus{state: ConnectionInitial}
}

func (s *ConnectionStatus) Get() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ConnectionStatus) Set(state ConnectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *ConnectionStatus) SetClosed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ConnectionError
		s.err = err
	} else {
		s.state = ConnectionClosed
	}
}

func (s *ConnectionStatus) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// SetBlocked records a connection.blocked/connection.unblocked
// notification from the broker (RabbitMQ's memory/disk alarm extension).
func (s *ConnectionStatus) SetBlocked(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = true
	s.blockReason = reason
}

func (s *ConnectionStatus) SetUnblocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked = false
	s.blockReason = ""
}

func (s *ConnectionStatus) Blocked() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocked, s.blockReason
}

// Connected reports whether RPCs can be issued on this connection.
func (s *ConnectionStatus) Connected() bool {
	return s.Get() == ConnectionConnected
}
