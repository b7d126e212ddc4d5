package amqp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arrowstream/amqp091/internal/frames"
	"github.com/arrowstream/amqp091/internal/protocol"
	"github.com/arrowstream/amqp091/internal/sasl"
)

const (
	protocolMajor  = 0
	protocolMinor  = 9
	protocolRevision = 1

	defaultChannelMax = 2047
	defaultFrameMax   = 131072
	defaultHeartbeat  = 10 * time.Second
)

// Config customizes Dial. The zero value is a reasonable default: no TLS,
// PLAIN guest/guest credentials, vhost "/", the broker's proposed
// channel-max and frame-max, and a 10s heartbeat (or the broker's proposal,
// if that is smaller and non-zero).
type Config struct {
	Credentials sasl.Credentials
	Vhost       string
	TLSClientConfig *tls.Config

	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  time.Duration

	Properties protocol.Table

	Locale string

	Dial func(network, addr string) (net.Conn, error)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Credentials == nil {
		out.Credentials = sasl.PlainCredentials{User: "guest", Password: "guest"}
	}
	if out.Vhost == "" {
		out.Vhost = "/"
	}
	if out.Locale == "" {
		out.Locale = "en_US"
	}
	if out.Heartbeat == 0 {
		out.Heartbeat = defaultHeartbeat
	}
	return out
}

// Connection holds the state of one AMQP connection directly. Callers and
// the I/O loop goroutines share it through a *Connection; the fields they
// both touch are guarded by the mutexes below.
type Connection struct {
	conn net.Conn

	status     *ConnectionStatus
	frameQueue *FrameQueue

	channelIDs *channelIDPool
	channels   map[uint16]*Channel
	channelsMu sync.Mutex

	replies   map[uint16][]*replyWaiter
	repliesMu sync.Mutex

	serverProps protocol.Table
	mechanisms  []string
	tunedChannelMax uint16
	tunedFrameMax   uint32
	tunedHeartbeat  time.Duration

	closeNotify []chan *Error

	lastHeartbeatRecv time.Time
	heartbeatMu       sync.Mutex

	log *logrus.Entry

	readerDone chan struct{}
	writerDone chan struct{}
}

// Dial connects to addr ("host:port") and completes the full AMQP 0-9-1
// handshake (protocol header, SASL, tune, open), returning a ready
// Connection.
func Dial(ctx context.Context, addr string, cfg Config) (*Connection, error) {
	cfg = cfg.withDefaults()

	dial := cfg.Dial
	if dial == nil {
		dial = net.Dial
	}
	nc, err := dial("tcp", addr)
	if err != nil {
		return nil, newIOError(err)
	}
	if cfg.TLSClientConfig != nil {
		nc = tls.Client(nc, cfg.TLSClientConfig)
	}

	c := &Connection{
		conn:       nc,
		status:     NewConnectionStatus(),
		frameQueue: NewFrameQueue(),
		channelIDs: newChannelIDPool(cfg.ChannelMax),
		channels:   make(map[uint16]*Channel),
		replies:    make(map[uint16][]*replyWaiter),
		log:        logrus.WithField("conn", addr),
		readerDone: make(chan struct{}),
		writerDone: make(chan struct{}),
	}

	if err := c.handshake(ctx, cfg); err != nil {
		_ = nc.Close()
		return nil, err
	}

	go c.writerLoop()
	go c.readerLoop()
	if c.tunedHeartbeat > 0 {
		go c.heartbeatLoop()
	}

	return c, nil
}

// ParseURIAndDial is a convenience wrapper combining ParseURI and Dial.
func ParseURIAndDial(ctx context.Context, uri string, cfg Config) (*Connection, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	cfg.Vhost = u.Vhost
	if cfg.Credentials == nil {
		cfg.Credentials = sasl.PlainCredentials{User: u.Username, Password: u.Password}
	}
	if u.TLS && cfg.TLSClientConfig == nil {
		cfg.TLSClientConfig = &tls.Config{ServerName: u.Host}
	}
	return Dial(ctx, fmt.Sprintf("%s:%d", u.Host, u.Port), cfg)
}

func (c *Connection) handshake(ctx context.Context, cfg Config) error {
	c.status.Set(ConnectionSentProtocolHeader)
	if _, err := c.conn.Write([]byte{'A', 'M', 'Q', 'P', 0, protocolMajor, protocolMinor, protocolRevision}); err != nil {
		return newIOError(err)
	}

	start, err := c.readMethod()
	if err != nil {
		return err
	}
	s, ok := start.(frames.ConnectionStart)
	if !ok {
		return newUnexpectedReply(frames.ConnectionStart{}, start)
	}
	c.serverProps = s.ServerProperties
	c.mechanisms = strings.Split(s.Mechanisms, " ")

	if !c.supportsMechanism(cfg.Credentials.Mechanism()) {
		c.log.Errorf("server does not support SASL mechanism %q (offers %v); proceeding anyway", cfg.Credentials.Mechanism(), c.mechanisms)
	}

	props := cfg.Properties
	if props == nil {
		props = defaultClientProperties()
	}
	startOk := frames.ConnectionStartOk{
		ClientProperties: props,
		Mechanism:        cfg.Credentials.Mechanism(),
		Response:         string(cfg.Credentials.Response()),
		Locale:           cfg.Locale,
	}
	if err := c.writeMethodDirect(0, startOk); err != nil {
		return err
	}
	c.status.Set(ConnectionSentStartOk)

	reply, err := c.readMethod()
	if err != nil {
		return err
	}
	var tune frames.ConnectionTune
	switch v := reply.(type) {
	case frames.ConnectionTune:
		tune = v
	case frames.ConnectionSecure:
		// Additional SASL challenge rounds are a RabbitMQ extension point
		// rarely exercised by PLAIN/AMQPLAIN/EXTERNAL; reject up front
		// rather than silently answering with an empty response.
		return newPreconditionFailed("server requested additional SASL challenge, unsupported")
	case frames.ConnectionClose:
		return newProtocolError(v.ReplyCode, v.ReplyText, v.ClassID_, v.MethodID_)
	default:
		return newUnexpectedReply(frames.ConnectionTune{}, reply)
	}

	c.tunedChannelMax = pickTuned(cfg.ChannelMax, tune.ChannelMax)
	c.tunedFrameMax = pickTuned(cfg.FrameMax, tune.FrameMax)
	c.tunedHeartbeat = pickHeartbeat(cfg.Heartbeat, tune.Heartbeat)
	c.channelIDs = newChannelIDPool(c.tunedChannelMax)

	tuneOk := frames.ConnectionTuneOk{
		ChannelMax: c.tunedChannelMax,
		FrameMax:   c.tunedFrameMax,
		Heartbeat:  uint16(c.tunedHeartbeat / time.Second),
	}
	if err := c.writeMethodDirect(0, tuneOk); err != nil {
		return err
	}
	c.status.Set(ConnectionSentTuneOk)

	if err := c.writeMethodDirect(0, frames.ConnectionOpen{VirtualHost: cfg.Vhost}); err != nil {
		return err
	}
	c.status.Set(ConnectionSentOpen)

	reply, err = c.readMethod()
	if err != nil {
		return err
	}
	switch v := reply.(type) {
	case frames.ConnectionOpenOk:
		c.status.Set(ConnectionConnected)
		c.lastHeartbeatRecv = time.Now()
		return nil
	case frames.ConnectionClose:
		return newProtocolError(v.ReplyCode, v.ReplyText, v.ClassID_, v.MethodID_)
	default:
		return newUnexpectedReply(frames.ConnectionOpenOk{}, reply)
	}
}

// pickTuned implements the AMQP 0-9-1 tuning rule: 0 from either side means
// "no limit requested by that side", and otherwise the smaller of the two
// non-zero values wins.
func pickTuned[T ~uint16 | ~uint32](client, server T) T {
	if client == 0 {
		return server
	}
	if server == 0 {
		return client
	}
	if client < server {
		return client
	}
	return server
}

func pickHeartbeat(client time.Duration, serverSecs uint16) time.Duration {
	server := time.Duration(serverSecs) * time.Second
	if client == 0 {
		return server
	}
	if server == 0 {
		return client
	}
	if client < server {
		return client
	}
	return server
}

func (c *Connection) supportsMechanism(name string) bool {
	for _, m := range c.mechanisms {
		if m == name {
			return true
		}
	}
	return false
}

func defaultClientProperties() protocol.Table {
	return protocol.Table{
		"product":  "amqp091",
		"platform": "Go",
		"capabilities": protocol.Table{
			"consumer_cancel_notify": true,
			"publisher_confirms":     true,
			"exchange_exchange_bindings": true,
			"basic.nack":              true,
			"connection.blocked":      true,
			"authentication_failure_close": true,
		},
	}
}

// readMethod reads exactly one method frame from the wire, used only
// during the handshake before the reader/writer goroutines are started.
func (c *Connection) readMethod() (frames.Method, error) {
	hdr := make([]byte, 7)
	if _, err := readFull(c.conn, hdr); err != nil {
		return nil, newIOError(err)
	}
	size := uint32(hdr[3])<<24 | uint32(hdr[4])<<16 | uint32(hdr[5])<<8 | uint32(hdr[6])
	payload := make([]byte, size+1)
	if _, err := readFull(c.conn, payload); err != nil {
		return nil, newIOError(err)
	}
	if payload[size] != protocol.FrameEnd {
		return nil, newParsingError(fmt.Errorf("missing frame-end marker"))
	}
	buf := newInnerBuffer(payload[:size])
	classID, err := protocol.ReadShort(buf)
	if err != nil {
		return nil, newParsingError(err)
	}
	methodID, err := protocol.ReadShort(buf)
	if err != nil {
		return nil, newParsingError(err)
	}
	m, err := frames.Decode(classID, methodID, buf)
	if err != nil {
		return nil, newParsingError(err)
	}
	return m, nil
}

func (c *Connection) writeMethodDirect(channel uint16, m frames.Method) error {
	buf := newOutputBuffer()
	if err := frames.WriteMethodFrame(buf, channel, m); err != nil {
		return newSerializationError(err)
	}
	if _, err := c.conn.Write(buf.Data()); err != nil {
		return newIOError(err)
	}
	return nil
}

func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// --- channel lifecycle ---

type channelIDPool struct {
	mu   sync.Mutex
	next uint16
	max  uint16
	free []uint16
}

func newChannelIDPool(max uint16) *channelIDPool {
	if max == 0 {
		max = defaultChannelMax
	}
	return &channelIDPool{next: 1, max: max}
}

func (p *channelIDPool) acquire() (uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		return id, nil
	}
	if p.next > p.max {
		return 0, newPreconditionFailed("channel-max exceeded")
	}
	id := p.next
	p.next++
	return id, nil
}

func (p *channelIDPool) release(id uint16) {
	p.mu.Lock()
	p.free = append(p.free, id)
	p.mu.Unlock()
}

// Channel opens a new channel and returns it once the broker has confirmed
// channel.open-ok.
func (c *Connection) Channel(ctx context.Context) (*Channel, error) {
	if !c.status.Connected() {
		return nil, newInvalidConnectionState(c.status.Get())
	}
	id, err := c.channelIDs.acquire()
	if err != nil {
		return nil, err
	}
	ch := newChannel(c, id)

	c.channelsMu.Lock()
	c.channels[id] = ch
	c.channelsMu.Unlock()

	if err := ch.open(ctx); err != nil {
		c.forgetChannel(id)
		return nil, err
	}
	return ch, nil
}

func (c *Connection) forgetChannel(id uint16) {
	c.channelsMu.Lock()
	delete(c.channels, id)
	c.channelsMu.Unlock()
	c.channelIDs.release(id)
}

func (c *Connection) channelByID(id uint16) (*Channel, bool) {
	c.channelsMu.Lock()
	defer c.channelsMu.Unlock()
	ch, ok := c.channels[id]
	return ch, ok
}

// --- RPC reply registry ---
//
// AMQP 0-9-1 is synchronous per channel, but a channel can have more than
// one RPC in flight at once (a QueueDeclare and a QueueBind issued back to
// back by the caller before either reply arrives): the protocol still
// guarantees the broker answers in request order with nothing else
// interleaved on that channel meanwhile, so a FIFO queue of expectations
// per channel id is what "synchronous per channel" actually requires.
// Channel 0 is the connection's own RPCs (open/close/tune).
type replyWaiter struct {
	expect frames.Method
	wait   *Wait[frames.Method]
}

// registerReply appends a new expectation to channel's reply queue. expect
// is a zero-value sample of the method the caller is about to block for
// (e.g. frames.QueueDeclareOk{}); resolveReply checks the broker's actual
// reply against it before resolving.
func (c *Connection) registerReply(channel uint16, expect frames.Method) *Wait[frames.Method] {
	w := NewWait[frames.Method]()
	c.repliesMu.Lock()
	c.replies[channel] = append(c.replies[channel], &replyWaiter{expect: expect, wait: w})
	c.repliesMu.Unlock()
	return w
}

// resolveReply matches m against the oldest outstanding expectation on
// channel. A class/method id mismatch means the client and broker have
// lost sync on which RPC is in flight, which is fatal: the channel (or the
// connection itself, for channel 0) moves to Error and every waiter still
// queued on it fails with UnexpectedReply, not just the one that would
// otherwise have matched.
func (c *Connection) resolveReply(channel uint16, m frames.Method) {
	c.repliesMu.Lock()
	q := c.replies[channel]
	if len(q) == 0 {
		c.repliesMu.Unlock()
		return
	}
	oldest := q[0]
	if oldest.expect.ClassID() != m.ClassID() || oldest.expect.MethodID() != m.MethodID() {
		c.repliesMu.Unlock()
		err := newUnexpectedReply(oldest.expect, m)
		if channel == 0 {
			c.status.SetClosed(err)
		} else if ch, ok := c.channelByID(channel); ok {
			ch.status.SetClosed(err)
		}
		c.failPendingReplies(channel, err)
		return
	}
	c.replies[channel] = q[1:]
	c.repliesMu.Unlock()
	oldest.wait.Resolve(m)
}

func (c *Connection) failPendingReplies(channel uint16, err error) {
	c.repliesMu.Lock()
	q := c.replies[channel]
	delete(c.replies, channel)
	c.repliesMu.Unlock()
	for _, rw := range q {
		rw.wait.Reject(err)
	}
}

// --- outbound framing ---

func (c *Connection) sendFrame(priority frames.Priority, channel uint16, m frames.Method) error {
	buf := newOutputBuffer()
	if err := frames.WriteMethodFrame(buf, channel, m); err != nil {
		return newSerializationError(err)
	}
	c.frameQueue.Enqueue(priority, channel, buf.Data())
	return nil
}

func (c *Connection) sendContent(channel uint16, bodySize uint64, props protocol.BasicProperties, body []byte) error {
	hbuf := newOutputBuffer()
	if err := frames.WriteHeaderFrame(hbuf, channel, bodySize, props); err != nil {
		return newSerializationError(err)
	}
	c.frameQueue.Enqueue(frames.Low, channel, hbuf.Data())

	maxChunk := int(c.tunedFrameMax) - 8
	if maxChunk <= 0 {
		maxChunk = defaultFrameMax - 8
	}
	for offset := 0; offset < len(body); offset += maxChunk {
		end := offset + maxChunk
		if end > len(body) {
			end = len(body)
		}
		bbuf := newOutputBuffer()
		frames.WriteBodyFrame(bbuf, channel, body[offset:end])
		c.frameQueue.Enqueue(frames.Low, channel, bbuf.Data())
		if len(body) == 0 {
			break
		}
	}
	return nil
}

// --- connection-level accessors ---

// Properties returns the default client properties table. When
// Config.Properties replaced that table during the handshake, the table
// actually sent is not recorded and is not what Properties returns.
func (c *Connection) Properties() protocol.Table {
	return defaultClientProperties()
}

// ServerProperties returns the broker's connection.start server-properties
// table.
func (c *Connection) ServerProperties() protocol.Table {
	return c.serverProps
}

// IsCapable reports whether the broker advertised name under
// server-properties.capabilities.
func (c *Connection) IsCapable(name string) bool {
	caps, ok := c.serverProps["capabilities"].(protocol.Table)
	if !ok {
		return false
	}
	v, ok := caps[name].(bool)
	return ok && v
}

// NotifyClose registers a channel that receives exactly one *Error when the
// connection terminates, then is closed.
func (c *Connection) NotifyClose(ch chan *Error) chan *Error {
	c.closeNotify = append(c.closeNotify, ch)
	return ch
}

// Close requests an orderly connection shutdown.
func (c *Connection) Close(ctx context.Context, code uint16, text string) error {
	if c.status.Get() == ConnectionClosed || c.status.Get() == ConnectionError {
		return nil
	}
	c.status.Set(ConnectionClosing)
	w := c.registerReply(0, frames.ConnectionCloseOk{})
	if err := c.sendFrame(frames.High, 0, frames.ConnectionClose{ReplyCode: code, ReplyText: text}); err != nil {
		return err
	}
	_, err := w.Receive(ctx)
	c.shutdown(nil)
	return err
}

func (c *Connection) shutdown(err error) {
	c.status.SetClosed(err)
	_ = c.conn.Close()

	c.channelsMu.Lock()
	chans := c.channels
	c.channels = make(map[uint16]*Channel)
	c.channelsMu.Unlock()
	for _, ch := range chans {
		ch.finalize(err)
	}

	c.repliesMu.Lock()
	pending := c.replies
	c.replies = make(map[uint16][]*replyWaiter)
	c.repliesMu.Unlock()
	for _, q := range pending {
		for _, rw := range q {
			if err != nil {
				rw.wait.Reject(err)
			} else {
				rw.wait.Reject(ErrConnectionClosed)
			}
		}
	}

	reason, ok := err.(*Error)
	if !ok {
		reason = &Error{Kind: ProtocolError, Code: protocol.ReplySuccess, Reason: "connection closed"}
	}
	for _, ch := range c.closeNotify {
		ch <- reason
		close(ch)
	}
	c.closeNotify = nil
}

