package amqp

import "github.com/arrowstream/amqp091/internal/protocol"

// Delivery is one message handed to a consumer via basic.deliver.
type Delivery struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
	Properties  protocol.BasicProperties
	Body        []byte

	channel *Channel
}

// Ack acknowledges the delivery. multiple additionally acknowledges every
// outstanding delivery on the channel up to and including this one.
func (d Delivery) Ack(multiple bool) error {
	return d.channel.Ack(d.DeliveryTag, multiple)
}

// Nack negatively acknowledges the delivery (RabbitMQ extension),
// optionally requeuing it and optionally covering every outstanding
// delivery up to and including this one.
func (d Delivery) Nack(multiple, requeue bool) error {
	return d.channel.Nack(d.DeliveryTag, multiple, requeue)
}

// Reject negatively acknowledges a single delivery using the plain AMQP
// 0-9-1 basic.reject, for brokers or policies that don't honor basic.nack.
func (d Delivery) Reject(requeue bool) error {
	return d.channel.Reject(d.DeliveryTag, requeue)
}

// BasicGetMessage is the result of a successful basic.get.
type BasicGetMessage struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
	Properties   protocol.BasicProperties
	Body         []byte

	channel *Channel
}

// Ack acknowledges the fetched message.
func (m BasicGetMessage) Ack(multiple bool) error {
	return m.channel.Ack(m.DeliveryTag, multiple)
}

// Nack negatively acknowledges the fetched message.
func (m BasicGetMessage) Nack(multiple, requeue bool) error {
	return m.channel.Nack(m.DeliveryTag, multiple, requeue)
}

// Reject negatively acknowledges the fetched message via basic.reject.
func (m BasicGetMessage) Reject(requeue bool) error {
	return m.channel.Reject(m.DeliveryTag, requeue)
}

// BasicReturnMessage is a message the broker could not route and handed
// back via basic.return, because the publisher set the mandatory (or
// immediate) flag.
type BasicReturnMessage struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
	Properties protocol.BasicProperties
	Body       []byte
}
