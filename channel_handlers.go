package amqp

import (
	"fmt"

	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// handleFrame routes one frame already read off the wire for this channel.
// It is called from the connection's single reader-dispatch path, never
// concurrently with itself, so it needs no locking of its own beyond what
// the fields it touches (status, queues, confirms, returns) already do.
func (c *Channel) handleFrame(fr frames.Frame) {
	switch fr.Type {
	case protocol.FrameMethod:
		c.handleMethod(fr.Method)
	case protocol.FrameHeader:
		c.status.Set(ChannelReceivingContent)
		completeQ := c.queues.HandleContentHeaderFrame(*fr.Header)
		completeR := c.returns.SetDeliveryProperties(*fr.Header)
		if completeQ || completeR {
			c.status.Set(ChannelConnected)
		}
	case protocol.FrameBody:
		completeQ, overshootQ := c.queues.HandleBodyFrame(fr.Body)
		completeR, overshootR := c.returns.ReceiveDeliveryContent(fr.Body)
		if overshootQ || overshootR {
			c.closeWithError(newPreconditionFailed("content body frame exceeded the header's declared size"))
			return
		}
		if completeQ || completeR {
			c.status.Set(ChannelConnected)
		}
	}
}

func (c *Channel) handleMethod(m frames.Method) {
	switch msg := m.(type) {
	case frames.ChannelOpenOk:
		c.conn.resolveReply(c.id, msg)
	case frames.ChannelFlowOk:
		c.conn.resolveReply(c.id, msg)
	case frames.ChannelFlow:
		c.onChannelFlow(msg)
	case frames.ChannelClose:
		c.onChannelClose(msg)
	case frames.ChannelCloseOk:
		c.conn.resolveReply(c.id, msg)

	case frames.ExchangeDeclareOk, frames.ExchangeDeleteOk, frames.ExchangeBindOk, frames.ExchangeUnbindOk:
		c.conn.resolveReply(c.id, msg)

	case frames.QueueDeclareOk, frames.QueueBindOk, frames.QueueUnbindOk,
		frames.QueuePurgeOk, frames.QueueDeleteOk:
		c.conn.resolveReply(c.id, msg)

	case frames.BasicQosOk, frames.BasicConsumeOk, frames.BasicCancelOk, frames.BasicRecoverOk:
		c.conn.resolveReply(c.id, msg)
	case frames.ConfirmSelectOk:
		c.conn.resolveReply(c.id, msg)

	case frames.BasicDeliver:
		c.status.Set(ChannelWillReceiveContent)
		c.queues.StartConsumerDelivery(msg.ConsumerTag, msg.DeliveryTag, msg.Redelivered, msg.Exchange, msg.RoutingKey)
	case frames.BasicGetOk:
		c.status.Set(ChannelWillReceiveContent)
		c.queues.StartBasicGetDelivery(msg.DeliveryTag, msg.Redelivered, msg.Exchange, msg.RoutingKey, msg.MessageCount)
	case frames.BasicGetEmpty:
		c.queues.CompleteEmptyGet()
	case frames.BasicReturn:
		c.status.Set(ChannelWillReceiveContent)
		c.returns.StartNewDelivery(msg.ReplyCode, msg.ReplyText, msg.Exchange, msg.RoutingKey)
	case frames.BasicCancel:
		c.queues.DeregisterConsumer(msg.ConsumerTag)

	case frames.BasicAck:
		if !c.confirms.Ack(msg.DeliveryTag, msg.Multiple) {
			c.closeWithError(newPreconditionFailed(fmt.Sprintf("unknown delivery tag %d", msg.DeliveryTag)))
			return
		}
		if msg.Multiple && msg.DeliveryTag == 0 {
			c.queues.DropPrefetchedMessages()
		}
	case frames.BasicNack:
		if !c.confirms.Nack(msg.DeliveryTag, msg.Multiple) {
			c.closeWithError(newPreconditionFailed(fmt.Sprintf("unknown delivery tag %d", msg.DeliveryTag)))
			return
		}
		if msg.Multiple && msg.DeliveryTag == 0 {
			c.queues.DropPrefetchedMessages()
		}

	default:
		c.log.Debugf("unhandled method on channel: %T", msg)
	}
}

func (c *Channel) onChannelFlow(msg frames.ChannelFlow) {
	// Application-level flow control (distinct from TCP/AMQP heartbeat
	// backpressure) is advisory; acknowledge it and let publishers keep
	// calling Publish, mirroring streadway/amqp's treatment of it as a
	// notification rather than a hard gate.
	_ = c.sendMethod(frames.High, frames.ChannelFlowOk{Active: msg.Active})
}

func (c *Channel) onChannelClose(msg frames.ChannelClose) {
	_ = c.sendMethod(frames.High, frames.ChannelCloseOk{})
	err := newProtocolError(msg.ReplyCode, msg.ReplyText, msg.ClassID_, msg.MethodID_)
	c.conn.failPendingReplies(c.id, err)
	c.finalize(err)
	c.conn.forgetChannel(c.id)
}
