package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/buffer"
)

func TestContentHeaderRoundTrip(t *testing.T) {
	props := BasicProperties{
		ContentType:   "application/json",
		DeliveryMode:  2,
		Priority:      5,
		CorrelationID: "corr-1",
		ReplyTo:       "reply-queue",
		MessageID:     "msg-1",
		Timestamp:     time.Unix(1700000000, 0).UTC(),
		Headers:       Table{"x-retry": int64(3)},
	}

	buf := buffer.New()
	require.NoError(t, WriteContentHeader(buf, ClassBasic, 1234, props))

	got, err := ReadContentHeader(buf)
	require.NoError(t, err)
	require.Equal(t, ClassBasic, got.ClassID)
	require.EqualValues(t, 1234, got.BodySize)
	require.Equal(t, props.ContentType, got.Properties.ContentType)
	require.Equal(t, props.DeliveryMode, got.Properties.DeliveryMode)
	require.Equal(t, props.Priority, got.Properties.Priority)
	require.Equal(t, props.CorrelationID, got.Properties.CorrelationID)
	require.Equal(t, props.ReplyTo, got.Properties.ReplyTo)
	require.Equal(t, props.MessageID, got.Properties.MessageID)
	require.True(t, props.Timestamp.Equal(got.Properties.Timestamp))
	require.Equal(t, int64(3), got.Properties.Headers["x-retry"])
}

func TestContentHeaderOmitsUnsetFields(t *testing.T) {
	buf := buffer.New()
	require.NoError(t, WriteContentHeader(buf, ClassBasic, 0, BasicProperties{}))

	got, err := ReadContentHeader(buf)
	require.NoError(t, err)
	require.Zero(t, got.BodySize)
	require.Equal(t, BasicProperties{}, got.Properties)
}
