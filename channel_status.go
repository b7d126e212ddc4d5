package amqp

import "sync"

// ChannelState is the channel's position in its lifecycle: a channel opens,
// optionally negotiates content framing state while a
// publish or delivery's header/body frames are still arriving, and closes
// either cleanly or on error.
type ChannelState int

const (
	ChannelInitial ChannelState = iota
	ChannelConnected
	ChannelWillReceiveContent
	ChannelReceivingContent
	ChannelSendingContent
	ChannelClosing
	ChannelClosed
	ChannelError
)

func (s ChannelState) String() string {
	switch s {
	case ChannelInitial:
		return "initial"
	case ChannelConnected:
		return "connected"
	case ChannelWillReceiveContent:
		return "will-receive-content"
	case ChannelReceivingContent:
		return "receiving-content"
	case ChannelSendingContent:
		return "sending-content"
	case ChannelClosing:
		return "closing"
	case ChannelClosed:
		return "closed"
	case ChannelError:
		return "error"
	default:
		return "unknown"
	}
}

// ChannelStatus guards a Channel's state transitions and closing-reason
// storage behind a single mutex, the way the connection guards its own
// ConnectionStatus.
type ChannelStatus struct {
	mu    sync.Mutex
	state ChannelState
	err   error
}

// NewChannelStatus returns a status starting at ChannelInitial.
func NewChannelStatus() *ChannelStatus {
	return &ChannelStatus{state: ChannelInitial}
}

func (s *ChannelStatus) Get() ChannelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChannelStatus) Set(state ChannelState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// SetClosed transitions to ChannelClosed (or ChannelError if err != nil)
// and records the reason returned by subsequent calls to Err.
func (s *ChannelStatus) SetClosed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = ChannelError
		s.err = err
	} else {
		s.state = ChannelClosed
	}
}

func (s *ChannelStatus) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Connected reports whether the channel can currently accept new
// publishes/RPCs.
func (s *ChannelStatus) Connected() bool {
	st := s.Get()
	return st == ChannelConnected || st == ChannelWillReceiveContent ||
		st == ChannelReceivingContent || st == ChannelSendingContent
}
