package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPickTunedPrefersSmallerNonZero(t *testing.T) {
	require.EqualValues(t, 100, pickTuned[uint16](100, 200))
	require.EqualValues(t, 100, pickTuned[uint16](200, 100))
}

func TestPickTunedZeroMeansNoPreference(t *testing.T) {
	require.EqualValues(t, 50, pickTuned[uint32](0, 50))
	require.EqualValues(t, 50, pickTuned[uint32](50, 0))
	require.EqualValues(t, 0, pickTuned[uint32](0, 0))
}

func TestPickHeartbeatSmallerWins(t *testing.T) {
	got := pickHeartbeat(30*time.Second, 10)
	require.Equal(t, 10*time.Second, got)
}

func TestPickHeartbeatZeroClientDefersToServer(t *testing.T) {
	got := pickHeartbeat(0, 15)
	require.Equal(t, 15*time.Second, got)
}

func TestPickHeartbeatZeroServerDefersToClient(t *testing.T) {
	got := pickHeartbeat(20*time.Second, 0)
	require.Equal(t, 20*time.Second, got)
}
