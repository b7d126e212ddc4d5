package amqp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// Channel is a lightweight multiplexed session over a Connection. It holds
// a pointer to its connection, and the connection's channel table holds a
// pointer to it until the channel closes and is forgotten.
type Channel struct {
	id   uint16
	conn *Connection

	status *ChannelStatus

	deliveryTags *IdSequence
	confirmMode  bool
	confirms     *Acknowledgements
	returns      *ReturnedMessages
	queues       *Queues

	closeNotify []chan *Error

	log *logrus.Entry
}

func newChannel(conn *Connection, id uint16) *Channel {
	return &Channel{
		id:           id,
		conn:         conn,
		status:       NewChannelStatus(),
		deliveryTags: NewIdSequence(),
		confirms:     NewAcknowledgements(),
		returns:      NewReturnedMessages(),
		queues:       NewQueues(),
		log:          conn.log.WithField("channel_id", id),
	}
}

// ID returns the channel number assigned by the connection.
func (c *Channel) ID() uint16 { return c.id }

func (c *Channel) open(ctx context.Context) error {
	c.status.Set(ChannelConnected)
	w := c.conn.registerReply(c.id, frames.ChannelOpenOk{})
	if err := c.sendMethod(frames.High, frames.ChannelOpen{}); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

func (c *Channel) sendMethod(priority frames.Priority, m frames.Method) error {
	return c.conn.sendFrame(priority, c.id, m)
}

func (c *Channel) checkConnected() error {
	if !c.status.Connected() {
		return newInvalidChannelState(c.status.Get())
	}
	return nil
}

// Close requests an orderly channel shutdown with the given reply code and
// text, waits for the broker's channel.close-ok, and releases the channel
// id back to the connection for reuse.
func (c *Channel) Close(ctx context.Context, code uint16, text string) error {
	if c.status.Get() == ChannelClosed || c.status.Get() == ChannelError {
		return nil
	}
	c.status.Set(ChannelClosing)
	w := c.conn.registerReply(c.id, frames.ChannelCloseOk{})
	err := c.sendMethod(frames.High, frames.ChannelClose{ReplyCode: code, ReplyText: text})
	if err != nil {
		return err
	}
	_, err = w.Receive(ctx)
	c.finalize(nil)
	c.conn.forgetChannel(c.id)
	return err
}

// finalize tears down channel-local state (consumers, pending confirms,
// queued outbound frames) and notifies listeners. err is nil for a clean
// local/remote close, non-nil when the channel died from a protocol error
// or the connection going away.
func (c *Channel) finalize(err error) {
	c.status.SetClosed(err)
	c.queues.DeregisterAll()
	if err != nil {
		c.confirms.NackAllPending()
	} else {
		c.confirms.AckAllPending()
	}
	c.returns.Drain()
	c.conn.frameQueue.DropChannel(c.id)

	reason, ok := err.(*Error)
	if !ok {
		reason = &Error{Kind: ProtocolError, Code: protocol.ReplySuccess, Reason: "channel closed"}
	}
	for _, ch := range c.closeNotify {
		ch <- reason
		close(ch)
	}
	c.closeNotify = nil
}

// closeWithError tears a channel down for a protocol violation detected
// locally (an unmatched publisher-confirm tag, say) rather than one
// reported by the broker's own channel.close. It never waits for a
// channel.close-ok since it runs from the connection's frame-dispatch path
// and blocking there would deadlock the reader loop.
func (c *Channel) closeWithError(reason *Error) {
	if c.status.Get() == ChannelClosed || c.status.Get() == ChannelError {
		return
	}
	c.status.Set(ChannelClosing)
	_ = c.sendMethod(frames.High, frames.ChannelClose{ReplyCode: reason.Code, ReplyText: reason.Reason})
	c.conn.failPendingReplies(c.id, reason)
	c.finalize(reason)
	c.conn.forgetChannel(c.id)
}

// NotifyClose registers a channel that receives exactly one *Error when the
// channel terminates (a ProtocolError with Code == ReplySuccess for a clean
// close), then is closed.
func (c *Channel) NotifyClose(ch chan *Error) chan *Error {
	c.closeNotify = append(c.closeNotify, ch)
	return ch
}

// NotifyReturn registers the callback invoked for every basic.return
// (mandatory/immediate publishes the broker could not route).
func (c *Channel) NotifyReturn(fn func(BasicReturnMessage)) {
	c.returns.SetCallback(fn)
}

// ExchangeDeclare declares an exchange, creating it if it does not already
// exist. Declaring an existing exchange with matching arguments is a no-op
// per AMQP semantics (idempotent).
func (c *Channel) ExchangeDeclare(ctx context.Context, name, kind string, durable, autoDelete, internal, noWait bool, args protocol.Table) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	m := frames.ExchangeDeclare{
		Exchange: name, Type: kind, Durable: durable, AutoDelete: autoDelete,
		Internal: internal, NoWait: noWait, Arguments: args,
	}
	if noWait {
		return c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.ExchangeDeclareOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

// ExchangeDelete deletes an exchange.
func (c *Channel) ExchangeDelete(ctx context.Context, name string, ifUnused, noWait bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	m := frames.ExchangeDelete{Exchange: name, IfUnused: ifUnused, NoWait: noWait}
	if noWait {
		return c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.ExchangeDeleteOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

// QueueDeclareResult is the broker's answer to queue.declare: the
// (possibly server-generated) queue name, and its current depth.
type QueueDeclareResult struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare declares a queue, creating it if needed. Declaring the same
// queue name with the same arguments repeatedly is idempotent; declaring
// a server-named queue (name == "") always creates a fresh queue.
func (c *Channel) QueueDeclare(ctx context.Context, name string, durable, autoDelete, exclusive, noWait bool, args protocol.Table) (QueueDeclareResult, error) {
	if err := c.checkConnected(); err != nil {
		return QueueDeclareResult{}, err
	}
	m := frames.QueueDeclare{
		Queue: name, Durable: durable, Exclusive: exclusive,
		AutoDelete: autoDelete, NoWait: noWait, Arguments: args,
	}
	if noWait {
		return QueueDeclareResult{}, c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.QueueDeclareOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return QueueDeclareResult{}, err
	}
	reply, err := w.Receive(ctx)
	if err != nil {
		return QueueDeclareResult{}, err
	}
	ok, ok2 := reply.(frames.QueueDeclareOk)
	if !ok2 {
		return QueueDeclareResult{}, newUnexpectedReply(frames.QueueDeclareOk{}, reply)
	}
	return QueueDeclareResult{Queue: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}, nil
}

// QueueBind binds queue to exchange under routingKey.
func (c *Channel) QueueBind(ctx context.Context, queue, exchange, routingKey string, noWait bool, args protocol.Table) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	m := frames.QueueBind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, NoWait: noWait, Arguments: args}
	if noWait {
		return c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.QueueBindOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

// QueueUnbind removes a binding.
func (c *Channel) QueueUnbind(ctx context.Context, queue, exchange, routingKey string, args protocol.Table) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	w := c.conn.registerReply(c.id, frames.QueueUnbindOk{})
	m := frames.QueueUnbind{Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: args}
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

// QueuePurge removes all ready (non-delivered) messages from a queue and
// reports how many were purged.
func (c *Channel) QueuePurge(ctx context.Context, queue string, noWait bool) (uint32, error) {
	if err := c.checkConnected(); err != nil {
		return 0, err
	}
	m := frames.QueuePurge{Queue: queue, NoWait: noWait}
	if noWait {
		return 0, c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.QueuePurgeOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return 0, err
	}
	reply, err := w.Receive(ctx)
	if err != nil {
		return 0, err
	}
	ok, ok2 := reply.(frames.QueuePurgeOk)
	if !ok2 {
		return 0, newUnexpectedReply(frames.QueuePurgeOk{}, reply)
	}
	return ok.MessageCount, nil
}

// QueueDelete deletes a queue and reports how many messages it held.
func (c *Channel) QueueDelete(ctx context.Context, queue string, ifUnused, ifEmpty, noWait bool) (uint32, error) {
	if err := c.checkConnected(); err != nil {
		return 0, err
	}
	m := frames.QueueDelete{Queue: queue, IfUnused: ifUnused, IfEmpty: ifEmpty, NoWait: noWait}
	if noWait {
		return 0, c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.QueueDeleteOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return 0, err
	}
	reply, err := w.Receive(ctx)
	if err != nil {
		return 0, err
	}
	ok, ok2 := reply.(frames.QueueDeleteOk)
	if !ok2 {
		return 0, newUnexpectedReply(frames.QueueDeleteOk{}, reply)
	}
	return ok.MessageCount, nil
}

// Qos sets the channel's prefetch limits (basic.qos).
func (c *Channel) Qos(ctx context.Context, prefetchCount uint16, prefetchSize uint32, global bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	w := c.conn.registerReply(c.id, frames.BasicQosOk{})
	m := frames.BasicQos{PrefetchSize: prefetchSize, PrefetchCount: prefetchCount, Global: global}
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

// Confirm puts the channel into publisher-confirm mode (confirm.select).
// It is idempotent: calling it twice is a local no-op on the second call.
func (c *Channel) Confirm(ctx context.Context, noWait bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	if c.confirmMode {
		return nil
	}
	m := frames.ConfirmSelect{NoWait: noWait}
	if !noWait {
		w := c.conn.registerReply(c.id, frames.ConfirmSelectOk{})
		if err := c.sendMethod(frames.Low, m); err != nil {
			return err
		}
		if _, err := w.Receive(ctx); err != nil {
			return err
		}
	} else if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	c.confirmMode = true
	return nil
}

// Consume registers a new consumer on queue and returns the Consumer its
// deliveries arrive on. If tag is empty, a UUID-derived tag is generated.
func (c *Channel) Consume(ctx context.Context, queue, tag string, autoAck, exclusive, noLocal, noWait bool, args protocol.Table) (*Consumer, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = "ctag-" + uuid.NewString()
	}
	consumer := newConsumer(tag, queue, autoAck, 64)

	m := frames.BasicConsume{
		Queue: queue, ConsumerTag: tag, NoLocal: noLocal, NoAck: autoAck,
		Exclusive: exclusive, NoWait: noWait, Arguments: args,
	}
	if noWait {
		c.queues.RegisterConsumer(consumer)
		return consumer, c.sendMethod(frames.Low, m)
	}

	w := c.conn.registerReply(c.id, frames.BasicConsumeOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return nil, err
	}
	reply, err := w.Receive(ctx)
	if err != nil {
		return nil, err
	}
	ok, ok2 := reply.(frames.BasicConsumeOk)
	if !ok2 {
		return nil, newUnexpectedReply(frames.BasicConsumeOk{}, reply)
	}
	consumer.Tag = ok.ConsumerTag
	c.queues.RegisterConsumer(consumer)
	return consumer, nil
}

// Cancel cancels a consumer by tag.
func (c *Channel) Cancel(ctx context.Context, tag string, noWait bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	m := frames.BasicCancel{ConsumerTag: tag, NoWait: noWait}
	if noWait {
		c.queues.DeregisterConsumer(tag)
		return c.sendMethod(frames.Low, m)
	}
	w := c.conn.registerReply(c.id, frames.BasicCancelOk{})
	if err := c.sendMethod(frames.Low, m); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	c.queues.DeregisterConsumer(tag)
	return err
}

// Get performs a one-shot basic.get, returning (nil, nil) if the queue was
// empty.
func (c *Channel) Get(ctx context.Context, queue string, autoAck bool) (*BasicGetMessage, error) {
	if err := c.checkConnected(); err != nil {
		return nil, err
	}
	w := NewWait[*BasicGetMessage]()
	c.queues.AwaitGet(w)
	if err := c.sendMethod(frames.Low, frames.BasicGet{Queue: queue, NoAck: autoAck}); err != nil {
		return nil, err
	}
	msg, err := w.Receive(ctx)
	if err != nil {
		return nil, err
	}
	if msg != nil {
		msg.channel = c
	}
	return msg, nil
}

// Publish sends a message to exchange under routingKey. If the channel is
// in confirm mode, the returned delivery tag can be awaited with AwaitConfirm.
func (c *Channel) Publish(ctx context.Context, exchange, routingKey string, mandatory, immediate bool, props protocol.BasicProperties, body []byte) (uint64, error) {
	if err := c.checkConnected(); err != nil {
		return 0, err
	}
	tag := c.deliveryTags.Next()
	if c.confirmMode {
		// Registered before the frames go out so a confirm that races
		// AwaitConfirm's own call is never silently dropped.
		c.confirms.RegisterPending(tag)
	}

	if err := c.sendMethod(frames.Low, frames.BasicPublish{
		Exchange: exchange, RoutingKey: routingKey, Mandatory: mandatory, Immediate: immediate,
	}); err != nil {
		return tag, err
	}
	if err := c.conn.sendContent(c.id, uint64(len(body)), props, body); err != nil {
		return tag, err
	}
	return tag, nil
}

// AwaitConfirm blocks until the broker acknowledges or rejects the publish
// identified by tag (only meaningful after Confirm has been called).
func (c *Channel) AwaitConfirm(ctx context.Context, tag uint64) (bool, error) {
	w := c.confirms.Await(tag)
	return w.Receive(ctx)
}

// WaitForConfirms blocks until the highest publisher-confirm tag pending at
// the time of the call has been acked or nacked, then returns every
// basic.return the broker sent since the last call. If no tag is currently
// pending, it returns immediately with whatever returns have accumulated.
func (c *Channel) WaitForConfirms(ctx context.Context) ([]BasicReturnMessage, error) {
	lastTag, pending := c.confirms.GetLastPending()
	if !pending {
		return c.returns.DrainCompleted(), nil
	}
	w := c.confirms.Await(lastTag)
	if _, err := w.Receive(ctx); err != nil {
		return nil, err
	}
	return c.returns.DrainCompleted(), nil
}

// Ack acknowledges one or more deliveries (basic.ack).
func (c *Channel) Ack(deliveryTag uint64, multiple bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	return c.sendMethod(frames.Low, frames.BasicAck{DeliveryTag: deliveryTag, Multiple: multiple})
}

// Nack negatively acknowledges one or more deliveries (basic.nack,
// RabbitMQ extension).
func (c *Channel) Nack(deliveryTag uint64, multiple, requeue bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	return c.sendMethod(frames.Low, frames.BasicNack{DeliveryTag: deliveryTag, Multiple: multiple, Requeue: requeue})
}

// Reject negatively acknowledges a single delivery (basic.reject).
func (c *Channel) Reject(deliveryTag uint64, requeue bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	return c.sendMethod(frames.Low, frames.BasicReject{DeliveryTag: deliveryTag, Requeue: requeue})
}

// Recover asks the broker to redeliver all unacknowledged messages on this
// channel, either back to the original consumer (requeue == false) or onto
// the queue for redelivery to any consumer (requeue == true). On success any
// messages already buffered for a consumer but not yet handed to it are
// dropped, since the broker is about to redeliver them afresh.
func (c *Channel) Recover(ctx context.Context, requeue bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	w := c.conn.registerReply(c.id, frames.BasicRecoverOk{})
	if err := c.sendMethod(frames.Low, frames.BasicRecover{Requeue: requeue}); err != nil {
		return err
	}
	if _, err := w.Receive(ctx); err != nil {
		return err
	}
	c.queues.DropPrefetchedMessages()
	return nil
}

// Flow enables or disables the broker pushing deliveries to this channel's
// consumers.
func (c *Channel) Flow(ctx context.Context, active bool) error {
	if err := c.checkConnected(); err != nil {
		return err
	}
	w := c.conn.registerReply(c.id, frames.ChannelFlowOk{})
	if err := c.sendMethod(frames.High, frames.ChannelFlow{Active: active}); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	return err
}

func (c *Channel) String() string {
	return fmt.Sprintf("channel(%d, %s)", c.id, c.status.Get())
}
