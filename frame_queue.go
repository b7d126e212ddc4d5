package amqp

import (
	"sync"

	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/queue"
)

// queuedFrame is one already-marshaled frame waiting to be written to the
// socket, tagged with the channel it belongs to so a channel close can drop
// its still-queued frames without touching anyone else's.
type queuedFrame struct {
	channel uint16
	sendID  uint64
	payload []byte
}

// FrameQueue is the connection's single outbound mailbox. Two priority
// lanes exist so that connection/channel control frames (channel
// open/close/close-ok, flow/flow-ok, connection.close, heartbeats) can
// jump ahead of a backlog of queued content frames from a channel under
// publisher backpressure; within a lane, delivery is
// FIFO. It is safe for concurrent use: any channel goroutine may enqueue
// while the single writer goroutine drains it.
type FrameQueue struct {
	mu      sync.Mutex
	high    *queue.Queue[queuedFrame]
	low     *queue.Queue[queuedFrame]
	notEmpty chan struct{}
	nextSend uint64
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{
		high:     queue.New[queuedFrame](16),
		low:      queue.New[queuedFrame](64),
		notEmpty: make(chan struct{}, 1),
		nextSend: 1,
	}
}

// Enqueue appends payload to the requested priority lane for channel, and
// returns the send id assigned to it (used only for diagnostics/tests; the
// writer does not wait on it).
func (q *FrameQueue) Enqueue(priority frames.Priority, channel uint16, payload []byte) uint64 {
	q.mu.Lock()
	id := q.nextSend
	q.nextSend++
	item := queuedFrame{channel: channel, sendID: id, payload: payload}
	if priority == frames.High {
		q.high.Enqueue(item)
	} else {
		q.low.Enqueue(item)
	}
	q.mu.Unlock()

	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
	return id
}

// Dequeue removes and returns the next frame to write, high-priority lane
// first, or ok=false if both lanes are empty.
func (q *FrameQueue) Dequeue() (queuedFrame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if item, ok := q.high.Peek(); ok {
		q.high.Dequeue()
		return item, true
	}
	if item, ok := q.low.Peek(); ok {
		q.low.Dequeue()
		return item, true
	}
	return queuedFrame{}, false
}

// Wait returns a channel that receives a signal after a frame is enqueued;
// the writer blocks on it until there is something to dequeue.
func (q *FrameQueue) Wait() <-chan struct{} {
	return q.notEmpty
}

// Len reports the total number of queued frames across both lanes.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.high.Len() + q.low.Len()
}

// DropChannel removes every still-queued frame belonging to channel,
// called when a channel is closed (locally or by the server) so its
// backlog does not leak onto the wire after the close.
func (q *FrameQueue) DropChannel(channel uint16) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := 0
	dropped += filterChannel(q.high, channel)
	dropped += filterChannel(q.low, channel)
	return dropped
}

func filterChannel(fq *queue.Queue[queuedFrame], channel uint16) int {
	kept := queue.New[queuedFrame](fq.Len())
	dropped := 0
	for fq.Len() > 0 {
		item := fq.Dequeue()
		if item.channel == channel {
			dropped++
			continue
		}
		kept.Enqueue(item)
	}
	for kept.Len() > 0 {
		fq.Enqueue(kept.Dequeue())
	}
	return dropped
}
