package amqp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitResolve(t *testing.T) {
	w := NewWait[int]()
	w.Resolve(42)
	v, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestWaitReject(t *testing.T) {
	w := NewWait[int]()
	boom := newPreconditionFailed("boom")
	w.Reject(boom)
	_, err := w.Receive(context.Background())
	require.Equal(t, boom, err)
}

func TestWaitReceiveHonorsContext(t *testing.T) {
	w := NewWait[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := w.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitResolveFromOtherGoroutine(t *testing.T) {
	w := NewWait[string]()
	go func() {
		time.Sleep(5 * time.Millisecond)
		w.Resolve("done")
	}()
	v, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.Equal(t, "done", v)
}
