package stream

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	// inbound messages the readLoop will receive
	readCh chan []byte
	// messages written by the client (e.g. the handshake payload)
	written chan []byte
	// error returned once readCh is exhausted
	readErr error

	closed bool
}

func newFakeConn(readErr error, inbound ...[]byte) *fakeConn {
	readCh := make(chan []byte, len(inbound))
	for _, msg := range inbound {
		readCh <- msg
	}
	close(readCh)
	return &fakeConn{
		readCh:  readCh,
		written: make(chan []byte, 10),
		readErr: readErr,
	}
}

func (c *fakeConn) close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) readMessage(ctx context.Context) ([]byte, error) {
	if msg, ok := <-c.readCh; ok {
		return msg, nil
	}
	if c.readErr != nil {
		return nil, c.readErr
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *fakeConn) writeMessage(ctx context.Context, data []byte) error {
	c.written <- data
	return nil
}

func connectedClient(t *testing.T, fc *fakeConn, opts ...Option) *Client {
	t.Helper()
	opts = append(opts, withConnCreator(func(ctx context.Context, u url.URL) (conn, error) {
		return fc, nil
	}))
	c := NewClient("/tops", opts...)
	require.NoError(t, c.Connect(context.Background()))
	return c
}

func collect(t *testing.T, c *Client) []Message {
	t.Helper()
	var msgs []Message
	timeout := time.After(time.Second)
	for {
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				return msgs
			}
			msgs = append(msgs, msg)
		case <-timeout:
			t.Fatal("timed out waiting for messages")
		}
	}
}

func TestMessageSequence(t *testing.T) {
	fc := newFakeConn(io.EOF, []byte(`{"symbol":"AAPL","lastSalePrice":120.5}`))
	c := connectedClient(t, fc)

	msgs := collect(t, c)
	require.Len(t, msgs, 3)
	assert.IsType(t, Opened{}, msgs[0])

	data, ok := msgs[1].(Data)
	require.True(t, ok)
	payload, ok := data.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AAPL", payload["symbol"])

	assert.IsType(t, Closed{}, msgs[2])
	require.NoError(t, <-c.Terminated())
	assert.True(t, fc.closed)
}

func TestTransportErrorDeliversErrorMessage(t *testing.T) {
	cause := errors.New("connection reset")
	fc := newFakeConn(cause, []byte(`{"a":1}`))
	c := connectedClient(t, fc)

	msgs := collect(t, c)
	require.Len(t, msgs, 3)
	errMsg, ok := msgs[2].(Error)
	require.True(t, ok)
	assert.Equal(t, cause, errMsg.Cause)

	assert.Equal(t, cause, <-c.Terminated())
}

func TestSendInitHandshake(t *testing.T) {
	fc := newFakeConn(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []Option{
		WithSendInit(map[string]string{"symbols": "AAPL,MSFT"}),
		withConnCreator(func(ctx context.Context, u url.URL) (conn, error) {
			return fc, nil
		}),
	}
	c := NewClient("/tops", opts...)
	require.NoError(t, c.Connect(ctx))

	select {
	case written := <-fc.written:
		assert.JSONEq(t, `{"symbols":"AAPL,MSFT"}`, string(written))
	case <-time.After(time.Second):
		t.Fatal("handshake payload was not written")
	}
	cancel()
	<-c.Terminated()
}

func TestRawMessages(t *testing.T) {
	fc := newFakeConn(io.EOF, []byte(`{"a":1}`))
	c := connectedClient(t, fc, WithRawMessages())

	msgs := collect(t, c)
	require.Len(t, msgs, 3)
	data := msgs[1].(Data)
	assert.Equal(t, `{"a":1}`, data.Payload)
}

func TestNonJSONPayloadFallsBackToText(t *testing.T) {
	fc := newFakeConn(io.EOF, []byte("plain text frame"))
	c := connectedClient(t, fc)

	msgs := collect(t, c)
	data := msgs[1].(Data)
	assert.Equal(t, "plain text frame", data.Payload)
}

func TestConnectTwiceFails(t *testing.T) {
	fc := newFakeConn(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient("/tops", withConnCreator(func(ctx context.Context, u url.URL) (conn, error) {
		return fc, nil
	}))
	require.NoError(t, c.Connect(ctx))
	assert.ErrorIs(t, c.Connect(ctx), ErrConnectCalledMultipleTimes)
	cancel()
	<-c.Terminated()
}

func TestCancellationDeliversClosed(t *testing.T) {
	fc := newFakeConn(nil)
	ctx, cancel := context.WithCancel(context.Background())
	c := connectedClientCtx(t, ctx, fc)

	cancel()
	require.NoError(t, <-c.Terminated())
}

func connectedClientCtx(t *testing.T, ctx context.Context, fc *fakeConn) *Client {
	t.Helper()
	c := NewClient("/tops", withConnCreator(func(ctx context.Context, u url.URL) (conn, error) {
		return fc, nil
	}))
	require.NoError(t, c.Connect(ctx))
	return c
}

func TestConstructURL(t *testing.T) {
	for _, tc := range []struct {
		host     string
		expected string
	}{
		{host: "wss://ws-api.iextrading.com", expected: "wss://ws-api.iextrading.com/1.0/tops"},
		{host: "ws://localhost:4000", expected: "ws://localhost:4000/1.0/tops"},
		{host: "http://localhost:4000", expected: "ws://localhost:4000/1.0/tops"},
		{host: "https://ws-api.iextrading.com", expected: "wss://ws-api.iextrading.com/1.0/tops"},
	} {
		c := NewClient("/tops", WithHost(tc.host))
		u, err := c.constructURL()
		require.NoError(t, err)
		assert.Equal(t, tc.expected, u.String())
	}
}
