package amqp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcknowledgementsSingleAck(t *testing.T) {
	a := NewAcknowledgements()
	w := a.RegisterPending(1)
	require.True(t, a.Ack(1, false))
	ok, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAcknowledgementsMultipleAckResolvesAllUpToTag(t *testing.T) {
	a := NewAcknowledgements()
	w1 := a.RegisterPending(1)
	w2 := a.RegisterPending(2)
	w3 := a.RegisterPending(3)

	require.True(t, a.Ack(2, true))

	v1, _ := w1.Receive(context.Background())
	v2, _ := w2.Receive(context.Background())
	require.True(t, v1)
	require.True(t, v2)
	require.Equal(t, 1, a.Len())

	require.True(t, a.Nack(3, false))
	v3, _ := w3.Receive(context.Background())
	require.False(t, v3)
}

func TestAcknowledgementsUnknownTagReportsNoMatch(t *testing.T) {
	a := NewAcknowledgements()
	a.RegisterPending(1)
	require.False(t, a.Ack(99, false))
	require.Equal(t, 1, a.Len())
}

func TestAcknowledgementsMultipleTagZeroResolvesEverything(t *testing.T) {
	a := NewAcknowledgements()
	w1 := a.RegisterPending(1)
	w2 := a.RegisterPending(2)
	require.True(t, a.Ack(0, true))
	v1, _ := w1.Receive(context.Background())
	v2, _ := w2.Receive(context.Background())
	require.True(t, v1)
	require.True(t, v2)
	require.Zero(t, a.Len())
}

func TestAcknowledgementsAwaitFindsAlreadyRegistered(t *testing.T) {
	a := NewAcknowledgements()
	registered := a.RegisterPending(5)
	awaited := a.Await(5)
	require.Same(t, registered, awaited)
}

func TestAcknowledgementsAwaitRegistersIfMissing(t *testing.T) {
	a := NewAcknowledgements()
	w := a.Await(7)
	require.True(t, a.Ack(7, false))
	v, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.True(t, v)
}

func TestAcknowledgementsGetLastPending(t *testing.T) {
	a := NewAcknowledgements()
	_, ok := a.GetLastPending()
	require.False(t, ok)

	a.RegisterPending(1)
	a.RegisterPending(2)
	last, ok := a.GetLastPending()
	require.True(t, ok)
	require.EqualValues(t, 2, last)
}

func TestAcknowledgementsAckAllPending(t *testing.T) {
	a := NewAcknowledgements()
	w1 := a.RegisterPending(1)
	w2 := a.RegisterPending(2)
	a.AckAllPending()
	v1, _ := w1.Receive(context.Background())
	v2, _ := w2.Receive(context.Background())
	require.True(t, v1)
	require.True(t, v2)
	require.Zero(t, a.Len())
}

func TestAcknowledgementsNackAllPending(t *testing.T) {
	a := NewAcknowledgements()
	w := a.RegisterPending(1)
	a.NackAllPending()
	v, _ := w.Receive(context.Background())
	require.False(t, v)
}
