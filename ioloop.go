package amqp

import (
	"fmt"
	"time"

	"github.com/arrowstream/amqp091/internal/buffer"
	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/protocol"
)

// The I/O loop is three goroutines rather than a literal translation of an
// edge-triggered poller over one fd: a reader goroutine blocks on
// net.Conn.Read and only ever produces frames, a writer goroutine blocks on
// the frame queue's wake channel and only ever calls net.Conn.Write, and
// (when negotiated) a heartbeat goroutine enqueues heartbeat frames and
// watches for the server going silent. Go's blocking I/O and goroutine
// scheduler give the same three readiness sources mio's poller would,
// without hand-rolling non-blocking sockets.

func (c *Connection) readerLoop() {
	defer close(c.readerDone)
	buf := buffer.NewWithCapacity(4096)
	readChunk := make([]byte, 32*1024)

	for {
		for {
			fr, err := frames.ParseFrame(buf)
			if err == frames.ErrIncomplete {
				break
			}
			if err != nil {
				c.fail(newParsingError(err))
				return
			}
			c.dispatch(fr)
		}

		n, err := c.conn.Read(readChunk)
		if n > 0 {
			_, _ = buf.Write(readChunk[:n])
		}
		if err != nil {
			if c.status.Get() == ConnectionClosing || c.status.Get() == ConnectionClosed {
				return
			}
			c.fail(newIOError(err))
			return
		}
	}
}

func (c *Connection) dispatch(fr frames.Frame) {
	c.heartbeatMu.Lock()
	c.lastHeartbeatRecv = time.Now()
	c.heartbeatMu.Unlock()

	if fr.Type == protocol.FrameHeartbeat {
		return
	}

	if fr.Channel == 0 {
		c.dispatchConnectionMethod(fr)
		return
	}

	ch, ok := c.channelByID(fr.Channel)
	if !ok {
		c.log.Debugf("frame for unknown channel %d", fr.Channel)
		return
	}
	ch.handleFrame(fr)
}

func (c *Connection) dispatchConnectionMethod(fr frames.Frame) {
	if fr.Type != protocol.FrameMethod {
		return
	}
	switch m := fr.Method.(type) {
	case frames.ConnectionCloseOk:
		c.resolveReply(0, m)
	case frames.ConnectionClose:
		_ = c.writeMethodDirect(0, frames.ConnectionCloseOk{})
		err := newProtocolError(m.ReplyCode, m.ReplyText, m.ClassID_, m.MethodID_)
		c.failPendingReplies(0, err)
		c.shutdown(err)
	case frames.ConnectionBlocked:
		c.status.SetBlocked(m.Reason)
	case frames.ConnectionUnblocked:
		c.status.SetUnblocked()
	default:
		c.log.Debugf("unhandled connection-level method: %T", m)
	}
}

func (c *Connection) fail(err error) {
	if c.status.Get() == ConnectionClosed || c.status.Get() == ConnectionError {
		return
	}
	c.log.WithError(err).Error("connection failing")
	c.shutdown(err)
}

func (c *Connection) writerLoop() {
	defer close(c.writerDone)
	for {
		select {
		case <-c.frameQueue.Wait():
		case <-c.readerDone:
			c.drainRemaining()
			return
		}

		for {
			item, ok := c.frameQueue.Dequeue()
			if !ok {
				break
			}
			if _, err := c.conn.Write(item.payload); err != nil {
				if c.status.Get() != ConnectionClosing && c.status.Get() != ConnectionClosed {
					c.fail(newIOError(err))
				}
				return
			}
		}
	}
}

// drainRemaining makes a best-effort attempt to flush anything still queued
// (e.g. a close-ok racing the reader noticing EOF) before the writer exits.
func (c *Connection) drainRemaining() {
	for {
		item, ok := c.frameQueue.Dequeue()
		if !ok {
			return
		}
		_, _ = c.conn.Write(item.payload)
	}
}

func (c *Connection) heartbeatLoop() {
	interval := c.tunedHeartbeat
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.readerDone:
			return
		case <-ticker.C:
			buf := newOutputBuffer()
			frames.WriteHeartbeat(buf)
			c.frameQueue.Enqueue(frames.High, 0, buf.Data())

			// A server is considered dead, not merely quiet, once twice the
			// negotiated interval has passed with nothing received (method
			// or body frames reset the deadline too, not just heartbeats,
			// per AMQP 0-9-1 §4.2.7, so this check allows for that).
			c.heartbeatMu.Lock()
			last := c.lastHeartbeatRecv
			c.heartbeatMu.Unlock()
			if !last.IsZero() && time.Since(last) > 2*interval {
				c.fail(newIOError(fmt.Errorf("missed heartbeat from server for %s", time.Since(last))))
				return
			}
		}
	}
}

