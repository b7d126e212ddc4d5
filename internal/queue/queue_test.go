package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOOrder(t *testing.T) {
	q := New[int](0)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Enqueue(3)

	require.Equal(t, 3, q.Len())
	require.Equal(t, 1, q.Dequeue())
	require.Equal(t, 2, q.Dequeue())
	require.Equal(t, 3, q.Dequeue())
	require.Zero(t, q.Len())
}

func TestPeekDoesNotConsume(t *testing.T) {
	q := New[string](0)
	q.Enqueue("a")

	v, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, "a", v)
	require.Equal(t, 1, q.Len())
}

func TestPeekEmpty(t *testing.T) {
	q := New[string](0)
	_, ok := q.Peek()
	require.False(t, ok)
}
