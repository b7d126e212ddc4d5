package amqp

import (
	"sync"

	"github.com/arrowstream/amqp091/internal/protocol"
)

// pendingContent accumulates the content-header and body frames that
// follow a basic.deliver/basic.get-ok/basic.return method frame, since
// AMQP 0-9-1 splits one logical message across up to three frames and a
// large body across several body frames.
type pendingContent struct {
	header *protocol.ContentHeader
	body   []byte
}

func (p *pendingContent) setHeader(h protocol.ContentHeader) {
	p.header = &h
	p.body = make([]byte, 0, h.BodySize)
}

// addBody appends a body chunk and reports whether the message is now
// complete. overshoot is true if chunk pushed the accumulated body past
// the header's declared BodySize, which the caller must treat as a
// protocol violation rather than accepting the extra bytes as part of the
// message.
func (p *pendingContent) addBody(chunk []byte) (complete, overshoot bool) {
	p.body = append(p.body, chunk...)
	if p.header == nil {
		return false, false
	}
	n := uint64(len(p.body))
	switch {
	case n > p.header.BodySize:
		return false, true
	case n == p.header.BodySize:
		return true, false
	default:
		return false, false
	}
}

// ReturnedMessages assembles basic.return deliveries, which arrive as a
// method frame immediately followed by a header frame and the body frames,
// all on the same channel, interleaved with nothing else per spec.
type ReturnedMessages struct {
	mu        sync.Mutex
	pending   *pendingReturn
	onReturn  func(BasicReturnMessage)
	completed []BasicReturnMessage
}

type pendingReturn struct {
	method  basicReturnFields
	content pendingContent
}

type basicReturnFields struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

// NewReturnedMessages returns an assembler with no registered callback; set
// one with SetCallback before frames start arriving.
func NewReturnedMessages() *ReturnedMessages {
	return &ReturnedMessages{}
}

// SetCallback installs the function invoked once a returned message is
// fully assembled. With a nil callback no function is invoked; completed
// returns are still kept for DrainCompleted either way.
func (r *ReturnedMessages) SetCallback(fn func(BasicReturnMessage)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReturn = fn
}

// StartNewDelivery begins assembling a message following a basic.return.
func (r *ReturnedMessages) StartNewDelivery(replyCode uint16, replyText, exchange, routingKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &pendingReturn{method: basicReturnFields{replyCode, replyText, exchange, routingKey}}
}

// SetDeliveryProperties attaches the content header to the in-flight
// return, completing it immediately if BodySize is zero. It reports
// whether this call completed the delivery. With no return in progress it
// does nothing and returns false; the channel dispatcher offers it every
// content header, including those that belong to deliveries.
func (r *ReturnedMessages) SetDeliveryProperties(h protocol.ContentHeader) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return false
	}
	r.pending.content.setHeader(h)
	if h.BodySize == 0 {
		r.complete()
		return true
	}
	return false
}

// ReceiveDeliveryContent appends a body chunk to the in-flight return. It
// reports whether the chunk completed the delivery, and whether it pushed
// the accumulated body past the header's declared size.
func (r *ReturnedMessages) ReceiveDeliveryContent(chunk []byte) (complete, overshoot bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return false, false
	}
	complete, overshoot = r.pending.content.addBody(chunk)
	if complete {
		r.complete()
	}
	return complete, overshoot
}

func (r *ReturnedMessages) complete() {
	p := r.pending
	r.pending = nil
	msg := BasicReturnMessage{
		ReplyCode:  p.method.ReplyCode,
		ReplyText:  p.method.ReplyText,
		Exchange:   p.method.Exchange,
		RoutingKey: p.method.RoutingKey,
		Body:       p.content.body,
	}
	if p.content.header != nil {
		msg.Properties = p.content.header.Properties
	}
	r.completed = append(r.completed, msg)
	if r.onReturn != nil {
		r.onReturn(msg)
	}
}

// DrainCompleted returns every fully-assembled returned message since the
// last drain and clears the buffer, backing wait_for_confirms's "drained
// list of returned messages" result.
func (r *ReturnedMessages) DrainCompleted() []BasicReturnMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.completed
	r.completed = nil
	return out
}

// Drain clears any in-flight, never-completed return; used when a channel
// closes mid-assembly so the next open channel starts clean.
func (r *ReturnedMessages) Drain() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}
