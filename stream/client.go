// Package stream implements the push-based namespace client of the legacy
// IEX websocket API. A client binds to one namespace path (e.g. "/tops"),
// optionally emits a handshake payload after connecting, and delivers every
// inbound message - decoded or raw - to the consumer.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"sync"
)

const (
	// defaultHost is the fixed websocket API host.
	defaultHost = "wss://ws-api.iextrading.com"
	// nsPrefix is the application-level path prefix of every namespace.
	nsPrefix = "/1.0"

	defaultBufferSize = 100
)

// ErrConnectCalledMultipleTimes is returned when Connect has been called multiple times on a single client
var ErrConnectCalledMultipleTimes = errors.New("tried to call Connect multiple times")

// Client is a namespace streaming client. A client can not be reused once
// its connection has terminated.
type Client struct {
	logger     Logger
	host       string
	namespace  string
	sendInit   interface{}
	raw        bool
	bufferSize int

	connectOnce    sync.Once
	messages       chan Message
	terminatedChan chan error
	conn           conn

	connCreator func(ctx context.Context, u url.URL) (conn, error)
}

// Option is a configuration option for the Client.
type Option func(*Client)

// WithLogger configures the logger
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHost overrides the fixed websocket host (mainly for tests).
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithSendInit configures a handshake payload emitted right after the
// connection is established, e.g. the symbols to subscribe to.
func WithSendInit(v interface{}) Option {
	return func(c *Client) {
		c.sendInit = v
	}
}

// WithRawMessages disables JSON decoding: Data payloads are delivered as
// raw message text.
func WithRawMessages() Option {
	return func(c *Client) {
		c.raw = true
	}
}

// WithBufferSize sets the size of the Messages channel buffer.
func WithBufferSize(size int) Option {
	return func(c *Client) {
		c.bufferSize = size
	}
}

func withConnCreator(connCreator func(ctx context.Context, u url.URL) (conn, error)) Option {
	return func(c *Client) {
		c.connCreator = connCreator
	}
}

// NewClient returns a new namespace client for the given namespace path
// (e.g. "/tops") whose default configuration is modified by opts.
func NewClient(namespace string, opts ...Option) *Client {
	c := &Client{
		logger:      DefaultLogger(),
		host:        defaultHost,
		namespace:   namespace,
		bufferSize:  defaultBufferSize,
		connCreator: newNhooyrWebsocketConn,

		terminatedChan: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.messages = make(chan Message, c.bufferSize)
	return c
}

// Connect establishes the connection, emits the handshake payload if one
// is configured, and starts the read loop. It performs a single attempt:
// the client never reconnects on its own, the read loop runs until the
// connection ends or ctx is cancelled.
//
// Should only be called once.
func (c *Client) Connect(ctx context.Context) error {
	err := ErrConnectCalledMultipleTimes
	c.connectOnce.Do(func() {
		err = c.connect(ctx)
	})
	return err
}

func (c *Client) connect(ctx context.Context) error {
	u, err := c.constructURL()
	if err != nil {
		return err
	}
	c.logger.Infof("iexstream: connecting to %s", u.String())
	conn, err := c.connCreator(ctx, u)
	if err != nil {
		return err
	}
	c.conn = conn

	if c.sendInit != nil {
		msg, err := json.Marshal(c.sendInit)
		if err != nil {
			c.conn.close()
			return err
		}
		if err := c.conn.writeMessage(ctx, msg); err != nil {
			c.conn.close()
			return err
		}
	}
	c.logger.Infof("iexstream: established connection")
	c.messages <- Opened{}

	go c.readLoop(ctx)
	return nil
}

func (c *Client) constructURL() (url.URL, error) {
	ub, err := url.Parse(c.host)
	if err != nil {
		return url.URL{}, err
	}
	scheme := "wss"
	switch ub.Scheme {
	case "http", "ws":
		scheme = "ws"
	}
	return url.URL{Scheme: scheme, Host: ub.Host, Path: nsPrefix + c.namespace}, nil
}

// Messages returns the channel the client delivers its message variants
// on. The channel is closed after a Closed or Error message.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Terminated returns a channel that the client sends an error to when it
// has terminated. The channel is also closed upon termination.
func (c *Client) Terminated() <-chan error {
	return c.terminatedChan
}

// Run connects and blocks until the connection terminates. It is the
// caller-blocking equivalent of Connect + waiting on Terminated.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return <-c.terminatedChan
}

func (c *Client) readLoop(ctx context.Context) {
	var terminal error

	defer func() {
		c.conn.close()
		close(c.messages)
		c.terminatedChan <- terminal
		close(c.terminatedChan)
	}()

	for {
		data, err := c.conn.readMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				c.logger.Infof("iexstream: disconnected")
				c.deliver(ctx, Closed{})
				return
			}
			c.logger.Errorf("iexstream: reading from conn failed, error: %v", err)
			c.deliver(ctx, Error{Cause: err})
			terminal = err
			return
		}
		c.deliver(ctx, Data{Payload: tryJSON(data, c.raw)})
	}
}

// deliver sends msg unless the consumer has gone away.
func (c *Client) deliver(ctx context.Context, msg Message) {
	select {
	case c.messages <- msg:
	case <-ctx.Done():
	}
}
