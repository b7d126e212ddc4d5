package amqp

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/mocks"
	"github.com/arrowstream/amqp091/internal/protocol"
)

func encodeMethod(channel uint16, m frames.Method) []byte {
	buf := buffer.New()
	if err := frames.WriteMethodFrame(buf, channel, m); err != nil {
		panic(err)
	}
	return append([]byte(nil), buf.Data()...)
}

// brokerHandshake answers the fixed sequence every Dial performs before a
// caller's own responder takes over: protocol header, start/start-ok,
// tune/tune-ok, open/open-ok. Heartbeat is negotiated away to an hour so
// the heartbeat goroutine never fires mid-test.
func brokerHandshake(fr mocks.Frame) ([]byte, bool) {
	if fr.IsProtocolHeader() {
		return encodeMethod(0, frames.ConnectionStart{
			VersionMajor:     0,
			VersionMinor:     9,
			ServerProperties: protocol.Table{},
			Mechanisms:       "PLAIN",
			Locales:          "en_US",
		}), true
	}
	if fr.Frame.Type != protocol.FrameMethod {
		return nil, false
	}
	switch fr.Frame.Method.(type) {
	case frames.ConnectionStartOk:
		return encodeMethod(0, frames.ConnectionTune{ChannelMax: 0, FrameMax: 131072, Heartbeat: 0}), true
	case frames.ConnectionTuneOk:
		return nil, true
	case frames.ConnectionOpen:
		return encodeMethod(0, frames.ConnectionOpenOk{}), true
	case frames.ConnectionClose:
		return encodeMethod(0, frames.ConnectionCloseOk{}), true
	}
	return nil, false
}

func dialTestConnection(t *testing.T, resp func(mocks.Frame) ([]byte, error)) (*Connection, *mocks.Connection) {
	t.Helper()
	var mc *mocks.Connection
	mc = mocks.NewConnection(func(fr mocks.Frame) ([]byte, error) {
		if out, handled := brokerHandshake(fr); handled {
			return out, nil
		}
		return resp(fr)
	})
	cfg := Config{
		Heartbeat: time.Hour,
		Dial:      func(network, addr string) (net.Conn, error) { return mc, nil },
	}
	conn, err := Dial(context.Background(), "broker.invalid:5672", cfg)
	require.NoError(t, err)
	return conn, mc
}

func TestDialCompletesHandshake(t *testing.T) {
	defer leaktest.Check(t)()
	conn, _ := dialTestConnection(t, func(fr mocks.Frame) ([]byte, error) { return nil, nil })
	require.True(t, conn.status.Connected())
	require.NoError(t, conn.Close(context.Background(), protocol.ReplySuccess, "bye"))
}

func TestChannelOpenAndQueueDeclare(t *testing.T) {
	defer leaktest.Check(t)()
	conn, _ := dialTestConnection(t, func(fr mocks.Frame) ([]byte, error) {
		switch m := fr.Frame.Method.(type) {
		case frames.ChannelOpen:
			return encodeMethod(fr.Frame.Channel, frames.ChannelOpenOk{}), nil
		case frames.QueueDeclare:
			return encodeMethod(fr.Frame.Channel, frames.QueueDeclareOk{
				Queue: m.Queue, MessageCount: 0, ConsumerCount: 0,
			}), nil
		}
		return nil, nil
	})
	defer conn.Close(context.Background(), protocol.ReplySuccess, "bye")

	ch, err := conn.Channel(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, ch.ID())

	res, err := ch.QueueDeclare(context.Background(), "orders", true, false, false, false, nil)
	require.NoError(t, err)
	require.Equal(t, "orders", res.Queue)
}

func TestPublishWithConfirmAck(t *testing.T) {
	defer leaktest.Check(t)()
	var tag uint64
	conn, _ := dialTestConnection(t, func(fr mocks.Frame) ([]byte, error) {
		switch fr.Frame.Method.(type) {
		case frames.ChannelOpen:
			return encodeMethod(fr.Frame.Channel, frames.ChannelOpenOk{}), nil
		case frames.ConfirmSelect:
			return encodeMethod(fr.Frame.Channel, frames.ConfirmSelectOk{}), nil
		}
		if fr.Frame.Type == protocol.FrameBody {
			n := atomic.AddUint64(&tag, 1)
			return encodeMethod(fr.Frame.Channel, frames.BasicAck{DeliveryTag: n, Multiple: false}), nil
		}
		return nil, nil
	})
	defer conn.Close(context.Background(), protocol.ReplySuccess, "bye")

	ch, err := conn.Channel(context.Background())
	require.NoError(t, err)
	require.NoError(t, ch.Confirm(context.Background(), false))

	publishTag, err := ch.Publish(context.Background(), "orders-exchange", "orders.new", false, false,
		protocol.BasicProperties{ContentType: "text/plain"}, []byte("hello"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok, err := ch.AwaitConfirm(ctx, publishTag)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConsumerReceivesDelivery(t *testing.T) {
	defer leaktest.Check(t)()
	conn, mc := dialTestConnection(t, func(fr mocks.Frame) ([]byte, error) {
		switch fr.Frame.Method.(type) {
		case frames.ChannelOpen:
			return encodeMethod(fr.Frame.Channel, frames.ChannelOpenOk{}), nil
		case frames.BasicConsume:
			return encodeMethod(fr.Frame.Channel, frames.BasicConsumeOk{ConsumerTag: "ctag-1"}), nil
		}
		return nil, nil
	})
	defer conn.Close(context.Background(), protocol.ReplySuccess, "bye")

	ch, err := conn.Channel(context.Background())
	require.NoError(t, err)

	consumer, err := ch.Consume(context.Background(), "orders", "", false, false, false, false, nil)
	require.NoError(t, err)
	require.Equal(t, "ctag-1", consumer.Tag)

	// Push a delivery straight through the mock's read channel, simulating
	// the broker pushing basic.deliver + header + body unprompted.
	deliverFrame := encodeMethod(ch.ID(), frames.BasicDeliver{
		ConsumerTag: "ctag-1", DeliveryTag: 1, Exchange: "orders-exchange", RoutingKey: "orders.new",
	})
	hbuf := buffer.New()
	require.NoError(t, frames.WriteHeaderFrame(hbuf, ch.ID(), 5, protocol.BasicProperties{}))
	bbuf := buffer.New()
	frames.WriteBodyFrame(bbuf, ch.ID(), []byte("hello"))

	mc.InjectRead(deliverFrame)
	mc.InjectRead(hbuf.Data())
	mc.InjectRead(bbuf.Data())

	select {
	case d := <-consumer.Deliveries:
		require.EqualValues(t, 1, d.DeliveryTag)
		require.Equal(t, []byte("hello"), d.Body)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}
