package amqp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/protocol"
)

func TestQueuesConsumerDeliveryRoundTrip(t *testing.T) {
	q := NewQueues()
	c := newConsumer("ctag-1", "orders", false, 4)
	q.RegisterConsumer(c)

	q.StartConsumerDelivery("ctag-1", 1, false, "orders-exchange", "orders.new")
	q.HandleContentHeaderFrame(protocol.ContentHeader{BodySize: 5, Properties: protocol.BasicProperties{ContentType: "text/plain"}})
	q.HandleBodyFrame([]byte("hello"))

	select {
	case d := <-c.Deliveries:
		require.EqualValues(t, 1, d.DeliveryTag)
		require.Equal(t, "orders-exchange", d.Exchange)
		require.Equal(t, []byte("hello"), d.Body)
	default:
		t.Fatal("expected a buffered delivery")
	}
}

func TestQueuesBasicGetRoundTrip(t *testing.T) {
	q := NewQueues()
	w := NewWait[*BasicGetMessage]()
	q.AwaitGet(w)

	q.StartBasicGetDelivery(9, false, "ex", "rk", 3)
	q.HandleContentHeaderFrame(protocol.ContentHeader{BodySize: 2})
	q.HandleBodyFrame([]byte("hi"))

	msg, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 9, msg.DeliveryTag)
	require.EqualValues(t, 3, msg.MessageCount)
	require.Equal(t, []byte("hi"), msg.Body)
}

func TestQueuesCompleteEmptyGetResolvesNil(t *testing.T) {
	q := NewQueues()
	w := NewWait[*BasicGetMessage]()
	q.AwaitGet(w)
	q.CompleteEmptyGet()

	msg, err := w.Receive(context.Background())
	require.NoError(t, err)
	require.Nil(t, msg)
}

func TestQueuesDeregisterConsumerClosesDeliveries(t *testing.T) {
	q := NewQueues()
	c := newConsumer("ctag-1", "orders", false, 1)
	q.RegisterConsumer(c)
	q.DeregisterConsumer("ctag-1")

	_, ok := <-c.Deliveries
	require.False(t, ok)
}

func TestQueuesDropPrefetchedMessagesDrainsBuffer(t *testing.T) {
	q := NewQueues()
	c := newConsumer("ctag-1", "orders", false, 4)
	q.RegisterConsumer(c)

	c.Deliveries <- Delivery{DeliveryTag: 1}
	c.Deliveries <- Delivery{DeliveryTag: 2}

	q.DropPrefetchedMessages()

	select {
	case <-c.Deliveries:
		t.Fatal("expected buffer to be drained")
	default:
	}
}

func TestQueuesHandleBodyFrameReportsOvershoot(t *testing.T) {
	q := NewQueues()
	c := newConsumer("ctag-1", "orders", false, 1)
	q.RegisterConsumer(c)

	q.StartConsumerDelivery("ctag-1", 1, false, "ex", "rk")
	q.HandleContentHeaderFrame(protocol.ContentHeader{BodySize: 2})
	complete, overshoot := q.HandleBodyFrame([]byte("too long"))
	require.False(t, complete)
	require.True(t, overshoot)

	select {
	case <-c.Deliveries:
		t.Fatal("an overshooting body must not be delivered to the consumer")
	default:
	}
}

func TestQueuesZeroBodyDeliveryCompletesOnHeaderAlone(t *testing.T) {
	q := NewQueues()
	c := newConsumer("ctag-1", "orders", true, 1)
	q.RegisterConsumer(c)

	q.StartConsumerDelivery("ctag-1", 1, false, "ex", "rk")
	q.HandleContentHeaderFrame(protocol.ContentHeader{BodySize: 0})

	select {
	case d := <-c.Deliveries:
		require.Empty(t, d.Body)
	default:
		t.Fatal("expected immediate completion for a zero-length body")
	}
}
