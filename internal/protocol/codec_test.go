package protocol

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/buffer"
)

func TestShortStringRoundTrip(t *testing.T) {
	buf := buffer.New()
	require.NoError(t, WriteShortString(buf, "hello"))
	got, err := ReadShortString(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestShortStringTooLong(t *testing.T) {
	buf := buffer.New()
	err := WriteShortString(buf, string(make([]byte, 256)))
	require.Error(t, err)
}

func TestLongStringRoundTrip(t *testing.T) {
	buf := buffer.New()
	require.NoError(t, WriteLongString(buf, "a longer string with spaces"))
	got, err := ReadLongString(buf)
	require.NoError(t, err)
	require.Equal(t, "a longer string with spaces", got)
}

func TestTableRoundTrip(t *testing.T) {
	in := Table{
		"str":   "value",
		"flag":  true,
		"i64":   int64(42),
		"f":     3.5,
		"nested": Table{"inner": "x"},
		"list":  []interface{}{int64(1), "two"},
	}
	buf := buffer.New()
	require.NoError(t, WriteTable(buf, in))
	out, err := ReadTable(buf)
	require.NoError(t, err)

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("table round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRejectsUnsupportedValue(t *testing.T) {
	buf := buffer.New()
	err := WriteTable(buf, Table{"bad": struct{}{}})
	require.Error(t, err)
}

func TestTimestampRoundTripTruncatesToSeconds(t *testing.T) {
	in := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	buf := buffer.New()
	WriteTimestamp(buf, in)
	out, err := ReadTimestamp(buf)
	require.NoError(t, err)
	require.True(t, in.Equal(out))
}
