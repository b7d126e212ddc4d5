package amqp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/frames"
)

func TestFrameQueueHighPriorityDequeuesFirst(t *testing.T) {
	q := NewFrameQueue()
	q.Enqueue(frames.Low, 1, []byte("low"))
	q.Enqueue(frames.High, 1, []byte("high"))

	first, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, []byte("high"), first.payload)

	second, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, []byte("low"), second.payload)

	_, ok = q.Dequeue()
	require.False(t, ok)
}

func TestFrameQueueFIFOWithinLane(t *testing.T) {
	q := NewFrameQueue()
	q.Enqueue(frames.Low, 1, []byte("a"))
	q.Enqueue(frames.Low, 1, []byte("b"))
	q.Enqueue(frames.Low, 1, []byte("c"))

	for _, want := range []string{"a", "b", "c"} {
		item, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, []byte(want), item.payload)
	}
}

func TestFrameQueueWaitSignalsOnEnqueue(t *testing.T) {
	q := NewFrameQueue()
	select {
	case <-q.Wait():
		t.Fatal("should not be ready before any enqueue")
	default:
	}
	q.Enqueue(frames.Low, 1, []byte("x"))
	select {
	case <-q.Wait():
	default:
		t.Fatal("expected Wait() to be ready after enqueue")
	}
}

func TestFrameQueueDropChannelRemovesOnlyThatChannel(t *testing.T) {
	q := NewFrameQueue()
	q.Enqueue(frames.Low, 1, []byte("ch1-a"))
	q.Enqueue(frames.Low, 2, []byte("ch2-a"))
	q.Enqueue(frames.High, 1, []byte("ch1-b"))
	q.Enqueue(frames.Low, 1, []byte("ch1-c"))

	dropped := q.DropChannel(1)
	require.Equal(t, 3, dropped)
	require.Equal(t, 1, q.Len())

	item, ok := q.Dequeue()
	require.True(t, ok)
	require.Equal(t, []byte("ch2-a"), item.payload)
}

func TestFrameQueueLen(t *testing.T) {
	q := NewFrameQueue()
	require.Zero(t, q.Len())
	q.Enqueue(frames.Low, 1, []byte("x"))
	q.Enqueue(frames.High, 1, []byte("y"))
	require.Equal(t, 2, q.Len())
}
