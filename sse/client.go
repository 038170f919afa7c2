// Package sse implements the IEX Cloud Server-Sent-Events streaming client.
//
// A stream delivers a sequence of JSON events for one channel (or, for the
// deep feed, several channels at once). The consumer either supplies a
// handler that is invoked per event and returns a control signal, or reads
// events lazily from a channel via Events.
package sse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mailru/easyjson/jlexer"

	"github.com/iexcloud/iex-api-go/iex"
	"github.com/iexcloud/iex-api-go/internal/tokens"
)

const (
	apiVersionStable = "stable"

	cloudSSEURL   = "https://cloud-sse.iexapis.com"
	sandboxSSEURL = "https://sandbox-sse.iexapis.com"
)

// Channel names of the IEX Cloud SSE feeds.
const (
	ChannelTOPS      = "tops"
	ChannelLast      = "last"
	ChannelDeep      = "deep"
	ChannelTrades    = "trades"
	ChannelNews      = "news-stream"
	ChannelSentiment = "sentiment-stream"
	ChannelForex     = "forex"
	ChannelCrypto    = "cryptoQuotes"
)

// Control tells the streaming loop whether to keep consuming events. It
// replaces the stop-by-exception pattern: the loop evaluates the handler's
// return value after each delivered event.
type Control int

const (
	// Continue keeps the stream running.
	Continue Control = iota
	// Stop terminates the stream gracefully. In accrue mode the messages
	// collected so far (not including the current one) are returned.
	Stop
)

// Handler is invoked once per decoded event.
type Handler func(Event) Control

// Event is a single decoded stream event.
type Event struct {
	// Data is the validated JSON payload of the event.
	Data json.RawMessage
}

// EventItem carries an event or a terminal error on the generator channel.
type EventItem struct {
	Event Event
	Error error
}

// DecodeError is returned when a stream payload is not valid JSON. It is
// always propagated and terminates the stream.
type DecodeError struct {
	Data []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sse: malformed event payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ClientOpts contains options for the SSE client.
type ClientOpts struct {
	// Token is the IEX Cloud API token. If empty, the IEX_TOKEN environment
	// variable is used.
	Token string
	// Version is the API version. Defaults to "stable"; sandbox mode
	// always pins it to "stable".
	Version string
	// Sandbox routes streams to the sandbox SSE environment.
	Sandbox bool
	// BaseURL overrides the resolved SSE base URL with a literal URL.
	BaseURL string
	// Env routes streams to a named sub-environment
	// (https://cloud-sse.{env}.iexapis.com). Ignored when BaseURL is set.
	Env string
}

// Client is the IEX Cloud SSE streaming client.
type Client struct {
	opts ClientOpts

	httpClient *http.Client
}

// NewClient creates a new SSE client using the given opts.
func NewClient(opts ClientOpts) *Client {
	if opts.Token == "" {
		opts.Token = tokens.FromEnv()
	}
	if opts.Version == "" {
		opts.Version = apiVersionStable
	}
	if opts.BaseURL == "" {
		switch {
		case opts.Sandbox:
			opts.BaseURL = sandboxSSEURL
		case opts.Env != "":
			opts.BaseURL = fmt.Sprintf("https://cloud-sse.%s.iexapis.com", opts.Env)
		default:
			opts.BaseURL = cloudSSEURL
		}
	}
	return &Client{
		opts: opts,
		// Streams are long-running; the transport must not impose a
		// client-side timeout.
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
	}
}

// DefaultClient uses options from environment variables, or the defaults.
var DefaultClient = NewClient(ClientOpts{})

type streamConfig struct {
	accrue bool
}

// StreamOption configures a single Stream call.
type StreamOption func(*streamConfig)

// WithAccrue makes Stream collect every consumed raw message and return
// the collection when the stream ends or the handler signals Stop.
func WithAccrue() StreamOption {
	return func(c *streamConfig) {
		c.accrue = true
	}
}

func (c *Client) version() string {
	if c.opts.Sandbox {
		return apiVersionStable
	}
	return c.opts.Version
}

// streamURL builds {base}/{version}/{channel}?symbols=...&token=... .
// Without symbols the all-symbols form (no symbols parameter) is used.
func (c *Client) streamURL(channel string, symbols []string) (string, error) {
	token := c.opts.Token
	if token == "" {
		return "", iex.ErrDeprecatedAPI
	}
	q := url.Values{}
	q.Set("token", token)
	if len(symbols) > 0 {
		q.Set("symbols", iex.StrCommaSeparatedString(symbols))
	}
	return fmt.Sprintf("%s/%s/%s?%s",
		strings.TrimSuffix(c.opts.BaseURL, "/"), c.version(), channel, q.Encode()), nil
}

// deepURL builds {base}/{version}/deep?symbols=...&channels=...&token=... .
func (c *Client) deepURL(symbols, channels []string) (string, error) {
	token := c.opts.Token
	if token == "" {
		return "", iex.ErrDeprecatedAPI
	}
	q := url.Values{}
	q.Set("token", token)
	q.Set("symbols", iex.StrCommaSeparatedString(symbols))
	q.Set("channels", iex.StrCommaSeparatedString(channels))
	return fmt.Sprintf("%s/%s/deep?%s",
		strings.TrimSuffix(c.opts.BaseURL, "/"), c.version(), q.Encode()), nil
}

// Stream opens the channel's event stream and invokes handler once per
// decoded event until the handler returns Stop, the stream ends, the ctx
// is cancelled, or an error occurs. With WithAccrue the consumed raw
// messages are collected and returned (on Stop, the stopping event itself
// is not included). A malformed JSON payload terminates the stream with a
// *DecodeError; no further events are consumed.
func (c *Client) Stream(
	ctx context.Context, channel string, symbols []string, handler Handler, opts ...StreamOption,
) ([]json.RawMessage, error) {
	u, err := c.streamURL(channel, symbols)
	if err != nil {
		return nil, err
	}
	return c.stream(ctx, u, handler, opts...)
}

// DeepStream opens a multi-channel deep stream for the given symbols.
// Semantics are identical to Stream.
func (c *Client) DeepStream(
	ctx context.Context, symbols, channels []string, handler Handler, opts ...StreamOption,
) ([]json.RawMessage, error) {
	u, err := c.deepURL(symbols, channels)
	if err != nil {
		return nil, err
	}
	return c.stream(ctx, u, handler, opts...)
}

func (c *Client) stream(
	ctx context.Context, u string, handler Handler, opts ...StreamOption,
) ([]json.RawMessage, error) {
	var cfg streamConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	body, err := c.connect(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var accrued []json.RawMessage
	err = readEvents(body, func(data []byte) (Control, error) {
		payload, err := decodePayload(data)
		if err != nil {
			return Stop, err
		}
		if ctrl := handler(Event{Data: payload}); ctrl == Stop {
			return Stop, nil
		}
		if cfg.accrue {
			accrued = append(accrued, payload)
		}
		return Continue, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			// Cancellation by the consumer, not a transport failure.
			return accrued, ctx.Err()
		}
		return accrued, err
	}
	return accrued, nil
}

// Events returns a channel that is lazily populated with the stream's
// decoded events. The channel is closed when the stream ends or the ctx is
// cancelled; a terminal failure is delivered as the final item's Error.
func (c *Client) Events(ctx context.Context, channel string, symbols []string) <-chan EventItem {
	u, err := c.streamURL(channel, symbols)
	return c.events(ctx, u, err)
}

// DeepEvents is the generator variant of DeepStream.
func (c *Client) DeepEvents(ctx context.Context, symbols, channels []string) <-chan EventItem {
	u, err := c.deepURL(symbols, channels)
	return c.events(ctx, u, err)
}

func (c *Client) events(ctx context.Context, u string, urlErr error) <-chan EventItem {
	ch := make(chan EventItem)

	go func() {
		defer close(ch)

		if urlErr != nil {
			ch <- EventItem{Error: urlErr}
			return
		}
		body, err := c.connect(ctx, u)
		if err != nil {
			ch <- EventItem{Error: err}
			return
		}
		defer body.Close()

		err = readEvents(body, func(data []byte) (Control, error) {
			payload, err := decodePayload(data)
			if err != nil {
				return Stop, err
			}
			select {
			case ch <- EventItem{Event: Event{Data: payload}}:
				return Continue, nil
			case <-ctx.Done():
				return Stop, nil
			}
		})
		if err != nil && ctx.Err() == nil {
			ch <- EventItem{Error: err}
		}
	}()

	return ch
}

// connect performs the one-shot streaming GET, transitioning the stream
// from Connecting to Streaming. A non-200 handshake fails with *iex.APIError.
func (c *Client) connect(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, &iex.APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp.Body, nil
}

// readEvents reads the SSE wire format and calls deliver once per event
// payload. It returns nil when the stream ends, the deliver callback's
// error, or the transport read error.
func readEvents(body io.Reader, deliver func(data []byte) (Control, error)) error {
	reader := bufio.NewReader(body)
	for {
		msg, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		const dataPrefix = "data: "
		if !bytes.HasPrefix(msg, []byte(dataPrefix)) {
			continue
		}
		data := bytes.TrimRight(msg[len(dataPrefix):], "\r\n")
		if len(data) == 0 {
			continue
		}
		ctrl, err := deliver(data)
		if err != nil {
			return err
		}
		if ctrl == Stop {
			return nil
		}
	}
}

// decodePayload validates that data is a single well-formed JSON value and
// returns it. The payload is scanned rather than unmarshalled: each event
// type has its own shape and the caller decodes it lazily.
func decodePayload(data []byte) (json.RawMessage, error) {
	l := jlexer.Lexer{Data: data}
	raw := l.Raw()
	l.Consumed()
	if err := l.Error(); err != nil {
		return nil, &DecodeError{Data: data, Err: err}
	}
	payload := make(json.RawMessage, len(raw))
	copy(payload, raw)
	return payload, nil
}

// Stream opens a stream using the default client.
func Stream(
	ctx context.Context, channel string, symbols []string, handler Handler, opts ...StreamOption,
) ([]json.RawMessage, error) {
	return DefaultClient.Stream(ctx, channel, symbols, handler, opts...)
}

// Events opens a generator stream using the default client.
func Events(ctx context.Context, channel string, symbols []string) <-chan EventItem {
	return DefaultClient.Events(ctx, channel, symbols)
}
