package amqp

import (
	"sync"

	"github.com/arrowstream/amqp091/internal/protocol"
)

// deliveryTarget is where an in-flight basic.deliver / basic.get-ok content
// assembly will be routed once its header and body frames are complete.
type deliveryTarget int

const (
	targetNone deliveryTarget = iota
	targetConsumer
	targetGet
)

type pendingDelivery struct {
	target      deliveryTarget
	consumerTag string
	deliveryTag uint64
	redelivered bool
	exchange    string
	routingKey  string
	msgCount    uint32
	content     pendingContent
}

// Queues tracks a channel's live consumers and the single in-flight
// content-frame assembly (basic.deliver or basic.get-ok; the broker never
// interleaves two deliveries' frames on one channel).
type Queues struct {
	mu        sync.Mutex
	consumers map[string]*Consumer
	pending   *pendingDelivery
	getWaiter *Wait[*BasicGetMessage]
}

// NewQueues returns an empty registry.
func NewQueues() *Queues {
	return &Queues{consumers: make(map[string]*Consumer)}
}

// RegisterConsumer installs a consumer under its tag. A consumer already
// registered under the same tag is replaced without being closed.
func (q *Queues) RegisterConsumer(c *Consumer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.consumers[c.Tag] = c
}

// DeregisterConsumer removes and closes the consumer registered under tag,
// if any.
func (q *Queues) DeregisterConsumer(tag string) {
	q.mu.Lock()
	c, ok := q.consumers[tag]
	delete(q.consumers, tag)
	q.mu.Unlock()
	if ok {
		c.close()
	}
}

// DeregisterAll closes every registered consumer, used when the channel
// closes.
func (q *Queues) DeregisterAll() {
	q.mu.Lock()
	all := q.consumers
	q.consumers = make(map[string]*Consumer)
	q.mu.Unlock()
	for _, c := range all {
		c.close()
	}
}

// AwaitGet registers the promise a pending basic.get blocks on.
func (q *Queues) AwaitGet(w *Wait[*BasicGetMessage]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.getWaiter = w
}

// StartConsumerDelivery begins assembling a basic.deliver.
func (q *Queues) StartConsumerDelivery(consumerTag string, deliveryTag uint64, redelivered bool, exchange, routingKey string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = &pendingDelivery{
		target:      targetConsumer,
		consumerTag: consumerTag,
		deliveryTag: deliveryTag,
		redelivered: redelivered,
		exchange:    exchange,
		routingKey:  routingKey,
	}
}

// StartBasicGetDelivery begins assembling a basic.get-ok.
func (q *Queues) StartBasicGetDelivery(deliveryTag uint64, redelivered bool, exchange, routingKey string, msgCount uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = &pendingDelivery{
		target:      targetGet,
		deliveryTag: deliveryTag,
		redelivered: redelivered,
		exchange:    exchange,
		routingKey:  routingKey,
		msgCount:    msgCount,
	}
}

// CompleteEmptyGet resolves a waiting basic.get with "no message available"
// (basic.get-empty carries no content frames at all).
func (q *Queues) CompleteEmptyGet() {
	q.mu.Lock()
	w := q.getWaiter
	q.getWaiter = nil
	q.mu.Unlock()
	if w != nil {
		w.Resolve(nil)
	}
}

// HandleContentHeaderFrame attaches the content header to the in-flight
// delivery, completing it immediately if BodySize is zero. It reports
// whether this call completed the delivery.
func (q *Queues) HandleContentHeaderFrame(h protocol.ContentHeader) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return false
	}
	q.pending.content.setHeader(h)
	if h.BodySize == 0 {
		q.completeLocked()
		return true
	}
	return false
}

// HandleBodyFrame appends a body chunk, completing the delivery once the
// accumulated body reaches the header's declared size. It reports whether
// this call completed the delivery, and whether the chunk pushed the
// accumulated body past the header's declared size.
func (q *Queues) HandleBodyFrame(chunk []byte) (complete, overshoot bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return false, false
	}
	complete, overshoot = q.pending.content.addBody(chunk)
	if complete {
		q.completeLocked()
	}
	return complete, overshoot
}

func (q *Queues) completeLocked() {
	p := q.pending
	q.pending = nil
	var props protocol.BasicProperties
	if p.content.header != nil {
		props = p.content.header.Properties
	}

	switch p.target {
	case targetConsumer:
		c, ok := q.consumers[p.consumerTag]
		if !ok {
			return
		}
		c.deliver(Delivery{
			ConsumerTag: p.consumerTag,
			DeliveryTag: p.deliveryTag,
			Redelivered: p.redelivered,
			Exchange:    p.exchange,
			RoutingKey:  p.routingKey,
			Properties:  props,
			Body:        p.content.body,
		})
	case targetGet:
		w := q.getWaiter
		q.getWaiter = nil
		if w != nil {
			w.Resolve(&BasicGetMessage{
				DeliveryTag:  p.deliveryTag,
				Redelivered:  p.redelivered,
				Exchange:     p.exchange,
				RoutingKey:   p.routingKey,
				MessageCount: p.msgCount,
				Properties:   props,
				Body:         p.content.body,
			})
		}
	}
}

// DropPrefetchedMessages discards every buffered-but-unconsumed delivery
// across all consumers. Recover calls it, and so does a multiple ack or
// nack with delivery tag 0.
func (q *Queues) DropPrefetchedMessages() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, c := range q.consumers {
		for {
			select {
			case <-c.Deliveries:
				continue
			default:
			}
			break
		}
	}
}
