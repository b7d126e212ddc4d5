package amqp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelStatusTransitions(t *testing.T) {
	s := NewChannelStatus()
	require.Equal(t, ChannelInitial, s.Get())
	require.False(t, s.Connected())

	s.Set(ChannelConnected)
	require.True(t, s.Connected())

	s.SetClosed(nil)
	require.Equal(t, ChannelClosed, s.Get())
	require.NoError(t, s.Err())
}

func TestChannelStatusSetClosedWithErrorGoesToError(t *testing.T) {
	s := NewChannelStatus()
	s.Set(ChannelConnected)
	boom := newPreconditionFailed("boom")
	s.SetClosed(boom)
	require.Equal(t, ChannelError, s.Get())
	require.Equal(t, boom, s.Err())
	require.False(t, s.Connected())
}

func TestChannelStateString(t *testing.T) {
	require.Equal(t, "connected", ChannelConnected.String())
	require.Equal(t, "unknown", ChannelState(99).String())
}
