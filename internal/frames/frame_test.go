package frames_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/protocol"
)

func TestMethodFrameRoundTrip(t *testing.T) {
	buf := buffer.New()
	m := frames.QueueDeclare{
		Queue:      "orders",
		Durable:    true,
		AutoDelete: false,
		Arguments:  protocol.Table{"x-max-length": int64(100)},
	}
	require.NoError(t, frames.WriteMethodFrame(buf, 3, m))

	fr, err := frames.ParseFrame(buf)
	require.NoError(t, err)
	require.Equal(t, protocol.FrameMethod, fr.Type)
	require.EqualValues(t, 3, fr.Channel)

	got, ok := fr.Method.(frames.QueueDeclare)
	require.True(t, ok)
	require.Equal(t, "orders", got.Queue)
	require.True(t, got.Durable)
	require.Equal(t, int64(100), got.Arguments["x-max-length"])
}

func TestParseFrameIncompleteThenComplete(t *testing.T) {
	buf := buffer.New()
	require.NoError(t, frames.WriteMethodFrame(buf, 1, frames.ChannelOpen{}))
	full := append([]byte(nil), buf.Data()...)

	partial := buffer.New()
	_, _ = partial.Write(full[:len(full)-1])
	_, err := frames.ParseFrame(partial)
	require.ErrorIs(t, err, frames.ErrIncomplete)

	_, _ = partial.Write(full[len(full)-1:])
	fr, err := frames.ParseFrame(partial)
	require.NoError(t, err)
	_, ok := fr.Method.(frames.ChannelOpen)
	require.True(t, ok)
}

func TestParseFrameRejectsBadFrameEnd(t *testing.T) {
	buf := buffer.New()
	require.NoError(t, frames.WriteMethodFrame(buf, 0, frames.ChannelOpen{}))
	corrupt := append([]byte(nil), buf.Data()...)
	corrupt[len(corrupt)-1] = 0x00

	in := buffer.New()
	_, _ = in.Write(corrupt)
	_, err := frames.ParseFrame(in)
	require.Error(t, err)
}

func TestHeaderAndBodyFrameRoundTrip(t *testing.T) {
	props := protocol.BasicProperties{ContentType: "text/plain"}
	hbuf := buffer.New()
	require.NoError(t, frames.WriteHeaderFrame(hbuf, 2, 11, props))
	hfr, err := frames.ParseFrame(hbuf)
	require.NoError(t, err)
	require.Equal(t, protocol.FrameHeader, hfr.Type)
	require.EqualValues(t, 11, hfr.Header.BodySize)
	require.Equal(t, "text/plain", hfr.Header.Properties.ContentType)

	bbuf := buffer.New()
	frames.WriteBodyFrame(bbuf, 2, []byte("hello world"))
	bfr, err := frames.ParseFrame(bbuf)
	require.NoError(t, err)
	require.Equal(t, protocol.FrameBody, bfr.Type)
	require.Equal(t, []byte("hello world"), bfr.Body)
}

func TestHeartbeatFrameRoundTrip(t *testing.T) {
	buf := buffer.New()
	frames.WriteHeartbeat(buf)
	fr, err := frames.ParseFrame(buf)
	require.NoError(t, err)
	require.Equal(t, protocol.FrameHeartbeat, fr.Type)
	require.EqualValues(t, 0, fr.Channel)
}

func TestDecodeUnknownMethodErrors(t *testing.T) {
	buf := buffer.New()
	_, err := frames.Decode(9999, 1, buf)
	require.Error(t, err)
}
