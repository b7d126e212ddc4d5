package amqp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdSequenceStartsAtOne(t *testing.T) {
	s := NewIdSequence()
	require.EqualValues(t, 1, s.Peek())
	require.EqualValues(t, 1, s.Next())
	require.EqualValues(t, 2, s.Next())
	require.EqualValues(t, 3, s.Next())
}

func TestIdSequenceReset(t *testing.T) {
	s := NewIdSequence()
	s.Next()
	s.Next()
	s.Reset()
	require.EqualValues(t, 1, s.Next())
}
