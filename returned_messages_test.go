package amqp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrowstream/amqp091/internal/protocol"
)

func TestReturnedMessagesAssemblesMethodHeaderBody(t *testing.T) {
	r := NewReturnedMessages()
	var captured []BasicReturnMessage
	r.SetCallback(func(m BasicReturnMessage) { captured = append(captured, m) })

	r.StartNewDelivery(312, "NO_ROUTE", "orders", "orders.new")
	r.SetDeliveryProperties(protocol.ContentHeader{
		ClassID:  protocol.ClassBasic,
		BodySize: 5,
		Properties: protocol.BasicProperties{ContentType: "text/plain"},
	})
	r.ReceiveDeliveryContent([]byte("hel"))
	r.ReceiveDeliveryContent([]byte("lo"))

	require.Len(t, captured, 1)
	msg := captured[0]
	require.EqualValues(t, 312, msg.ReplyCode)
	require.Equal(t, "NO_ROUTE", msg.ReplyText)
	require.Equal(t, "orders", msg.Exchange)
	require.Equal(t, "orders.new", msg.RoutingKey)
	require.Equal(t, []byte("hello"), msg.Body)
	require.Equal(t, "text/plain", msg.Properties.ContentType)
}

func TestReturnedMessagesZeroBodyCompletesOnHeaderAlone(t *testing.T) {
	r := NewReturnedMessages()
	var captured []BasicReturnMessage
	r.SetCallback(func(m BasicReturnMessage) { captured = append(captured, m) })

	r.StartNewDelivery(312, "NO_ROUTE", "", "")
	r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 0})

	require.Len(t, captured, 1)
}

func TestReturnedMessagesReceiveDeliveryContentReportsOvershoot(t *testing.T) {
	r := NewReturnedMessages()
	var captured []BasicReturnMessage
	r.SetCallback(func(m BasicReturnMessage) { captured = append(captured, m) })

	r.StartNewDelivery(312, "NO_ROUTE", "orders", "orders.new")
	r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 3})
	complete, overshoot := r.ReceiveDeliveryContent([]byte("too long"))
	require.False(t, complete)
	require.True(t, overshoot)
	require.Empty(t, captured)
}

func TestReturnedMessagesDrainCompleted(t *testing.T) {
	r := NewReturnedMessages()
	r.StartNewDelivery(312, "NO_ROUTE", "ex", "rk")
	r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 0})
	r.StartNewDelivery(312, "NO_ROUTE", "ex2", "rk2")
	r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 0})

	drained := r.DrainCompleted()
	require.Len(t, drained, 2)

	require.Empty(t, r.DrainCompleted())
}

func TestReturnedMessagesNoCallbackDoesNotPanic(t *testing.T) {
	r := NewReturnedMessages()
	r.StartNewDelivery(312, "NO_ROUTE", "ex", "rk")
	require.NotPanics(t, func() {
		r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 0})
	})
}

func TestReturnedMessagesDrainClearsInFlightAssembly(t *testing.T) {
	r := NewReturnedMessages()
	r.StartNewDelivery(312, "NO_ROUTE", "ex", "rk")
	r.Drain()
	// A header arriving for the now-dropped delivery is a no-op, not a panic.
	require.NotPanics(t, func() {
		r.SetDeliveryProperties(protocol.ContentHeader{BodySize: 0})
	})
	require.Empty(t, r.DrainCompleted())
}
