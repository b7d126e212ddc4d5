package amqp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionStatusTransitions(t *testing.T) {
	s := NewConnectionStatus()
	require.Equal(t, ConnectionInitial, s.Get())
	require.False(t, s.Connected())

	s.Set(ConnectionConnected)
	require.True(t, s.Connected())

	s.SetClosed(nil)
	require.Equal(t, ConnectionClosed, s.Get())
}

func TestConnectionStatusBlocked(t *testing.T) {
	s := NewConnectionStatus()
	blocked, reason := s.Blocked()
	require.False(t, blocked)
	require.Empty(t, reason)

	s.SetBlocked("low on memory")
	blocked, reason = s.Blocked()
	require.True(t, blocked)
	require.Equal(t, "low on memory", reason)

	s.SetUnblocked()
	blocked, _ = s.Blocked()
	require.False(t, blocked)
}
