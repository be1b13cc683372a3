package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/muurk/danmaku/internal/dispatch"
	"github.com/muurk/danmaku/internal/logging"
	"github.com/muurk/danmaku/internal/metrics"
	"github.com/muurk/danmaku/internal/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultHeartbeatInterval is how often a heartbeat frame is sent
	DefaultHeartbeatInterval = 30 * time.Second

	// DefaultHandshakeTimeout bounds the websocket upgrade
	DefaultHandshakeTimeout = 10 * time.Second

	// Time allowed to write a message to the server
	writeWait = 10 * time.Second

	// Time allowed for the close handshake on shutdown
	closeWait = time.Second
)

// Config holds the client configuration
type Config struct {
	URL               string        // Chat server websocket endpoint
	RoomID            int64         // Room to join
	HeartbeatInterval time.Duration // Zero means DefaultHeartbeatInterval
	HandshakeTimeout  time.Duration // Zero means DefaultHandshakeTimeout
	CaptureDir        string        // Directory for JSONL captures (empty = disabled)
}

// Option customizes a Client
type Option func(*Client)

// WithMetrics reports packets, heartbeats and events to m
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithDialer replaces the websocket dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// Client is a danmaku websocket client for a single room
type Client struct {
	config     Config
	dialer     *websocket.Dialer
	handler    dispatch.Handler
	metrics    *metrics.Collector
	sessionID  string
	messageNum atomic.Int64

	writeMu sync.Mutex // gorilla allows one concurrent writer
}

// New creates a client delivering decoded events to handler
func New(cfg Config, handler dispatch.Handler, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("server URL is required")
	}
	if cfg.RoomID <= 0 {
		return nil, fmt.Errorf("invalid room id %d: must be positive", cfg.RoomID)
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}

	c := &Client{
		config:    cfg,
		handler:   handler,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.dialer == nil {
		c.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}
	}
	if c.metrics != nil {
		c.handler = dispatch.MultiHandler{c.handler, c.metrics}
	}

	return c, nil
}

// SessionID identifies this client in logs and capture records
func (c *Client) SessionID() string {
	return c.sessionID
}

// Run connects, joins the room and processes messages until ctx is
// cancelled (returns nil) or the connection fails (returns the error).
func (c *Client) Run(ctx context.Context) error {
	logging.Info("Connecting to chat server",
		zap.String("session_id", c.sessionID),
		zap.String("url", c.config.URL),
		zap.Int64("room_id", c.config.RoomID),
	)

	conn, resp, err := c.dialer.DialContext(ctx, c.config.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.config.URL, err)
	}
	logging.LogConnection(c.sessionID, c.config.URL, "connected")

	defer func() {
		_ = conn.Close()
		logging.LogConnection(c.sessionID, c.config.URL, "disconnected")
	}()

	var capture *Capture
	if c.config.CaptureDir != "" {
		capture, err = NewCapture(c.config.CaptureDir, c.sessionID)
		if err != nil {
			return err
		}
		defer func() { _ = capture.Close() }()
		logging.Info("Capturing frames",
			zap.String("session_id", c.sessionID),
			zap.String("path", capture.Path()),
		)
	}

	s := &session{
		client:     c,
		conn:       conn,
		capture:    capture,
		dispatcher: dispatch.New(c.handler),
	}

	join, err := protocol.BuildJoinRoom(c.config.RoomID)
	if err != nil {
		return err
	}
	if err := s.send(join); err != nil {
		return fmt.Errorf("failed to join room %d: %w", c.config.RoomID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.readLoop)
	g.Go(func() error {
		return s.heartbeatLoop(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.close()
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}
