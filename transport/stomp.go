package transport

import (
	"chat-client/contract"
	"chat-client/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultBrokerURL      = "ws://localhost:8080/ws/websocket"
	DefaultHeartBeat      = 20 * time.Second
	DefaultConnectTimeout = 10 * time.Second
	jsonContentType       = "application/json"
)

type StompConfig struct {
	URL            string
	Host           string // STOMP virtual host, defaults to the URL host
	HeartBeat      time.Duration
	ConnectTimeout time.Duration
}

// StompDialer opens STOMP 1.2 sessions carried over a WebSocket.
type StompDialer struct {
	log    *slog.Logger
	cfg    StompConfig
	dialer *websocket.Dialer
}

func NewStompDialer(log *slog.Logger, cfg StompConfig) *StompDialer {
	if cfg.URL == "" {
		cfg.URL = DefaultBrokerURL
	}
	if cfg.HeartBeat <= 0 {
		cfg.HeartBeat = DefaultHeartBeat
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return &StompDialer{
		log: log,
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.ConnectTimeout,
			Subprotocols:     []string{"v12.stomp", "v11.stomp"},
		},
	}
}

// Open returns at once; the WebSocket and STOMP handshakes run in the background
// and report through events.
func (d *StompDialer) Open(ctx context.Context, events contract.ChannelEvents) contract.Channel {
	handshakeCtx, cancel := context.WithCancel(ctx)
	ch := &stompChannel{
		id:                uuid.NewString(),
		log:               d.log,
		events:            events,
		cancel:            cancel,
		disconnectTimeout: d.cfg.ConnectTimeout,
	}
	go ch.handshake(handshakeCtx, d)
	return ch
}

type stompChannel struct {
	id     string
	log    *slog.Logger
	events contract.ChannelEvents
	cancel context.CancelFunc

	mu     sync.Mutex
	conn   *stomp.Conn
	closed bool
	failed bool

	disconnectTimeout time.Duration

	// one failure event per channel, whatever path detects it first
	failOnce sync.Once
}

func (c *stompChannel) handshake(ctx context.Context, d *StompDialer) {
	dialCtx, cancel := context.WithTimeout(ctx, d.cfg.ConnectTimeout)
	defer cancel()

	wsConn, _, err := d.dialer.DialContext(dialCtx, d.cfg.URL, nil)
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", errors.ErrConnect, err), c.events.OnError)
		return
	}
	stream := newWSStream(wsConn)

	host := d.cfg.Host
	if host == "" {
		host = wsConn.RemoteAddr().String()
	}

	_ = wsConn.SetReadDeadline(time.Now().Add(d.cfg.ConnectTimeout))
	conn, err := stomp.Connect(stream,
		stomp.ConnOpt.Host(host),
		stomp.ConnOpt.AcceptVersion(stomp.V12),
		stomp.ConnOpt.HeartBeat(d.cfg.HeartBeat, 0),
	)
	if err != nil {
		_ = stream.Close()
		c.fail(fmt.Errorf("%w: %v", errors.ErrConnect, err), c.events.OnError)
		return
	}
	_ = wsConn.SetReadDeadline(time.Time{})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.MustDisconnect()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.log.Debug("STOMP session established", "channel", c.id, "server", conn.Server(), "version", conn.Version())
	c.events.OnOpen()
}

func (c *stompChannel) ID() string {
	return c.id
}

func (c *stompChannel) Send(destination string, payload []byte) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	if err := conn.Send(destination, jsonContentType, payload); err != nil {
		c.lost(err)
		return err
	}
	return nil
}

// Subscribe consumes destination in its own goroutine until the session ends.
func (c *stompChannel) Subscribe(destination string, handler func(payload []byte)) error {
	conn, err := c.current()
	if err != nil {
		return err
	}
	sub, err := conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		return err
	}
	go c.pump(sub, handler)
	return nil
}

func (c *stompChannel) pump(sub *stomp.Subscription, handler func(payload []byte)) {
	for msg := range sub.C {
		if msg.Err != nil {
			c.lost(msg.Err)
			return
		}
		handler(msg.Body)
	}
	c.lost(errors.ErrTransportClosed)
}

// Close tears the channel down without emitting any event.
// A healthy session says goodbye with DISCONNECT and waits for the receipt,
// bounded by the connect timeout; a failed one is just dropped.
func (c *stompChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn, failed := c.conn, c.failed
	c.mu.Unlock()

	c.cancel()
	if conn == nil {
		return nil
	}
	if failed {
		if err := conn.MustDisconnect(); err != nil {
			c.log.Debug("Drop after failure", "channel", c.id, "error", err)
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- conn.Disconnect() }()
	select {
	case err := <-done:
		return err
	case <-time.After(c.disconnectTimeout):
		c.log.Debug("DISCONNECT receipt timed out", "channel", c.id)
		return conn.MustDisconnect()
	}
}

func (c *stompChannel) current() (*stomp.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return nil, errors.ErrNotConnected
	}
	return c.conn, nil
}

func (c *stompChannel) lost(err error) {
	c.fail(err, c.events.OnClose)
}

func (c *stompChannel) fail(err error, emit func(error)) {
	c.mu.Lock()
	closed := c.closed
	c.failed = true
	c.mu.Unlock()
	if closed {
		return
	}
	c.failOnce.Do(func() {
		c.log.Debug("Channel failed", "channel", c.id, "error", err)
		emit(err)
	})
}
