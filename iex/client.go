package iex

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iexcloud/iex-api-go/internal/tokens"
)

const (
	apiVersionStable = "stable"

	cloudURL   = "https://cloud.iexapis.com"
	sandboxURL = "https://sandbox.iexapis.com"
)

// ClientOpts contains options for the IEX Cloud client.
//
// All routing state lives here: there are no package-level overrides. To
// point a client at a different environment, construct it with the
// appropriate options.
type ClientOpts struct {
	// Token is the IEX Cloud API token. If empty, the IEX_TOKEN environment
	// variable is used.
	Token string
	// Version is the API version, e.g. "stable", "v1", "beta".
	// Defaults to "stable". Ignored in sandbox mode, which always pins
	// the version to "stable".
	Version string
	// Sandbox routes all calls to the sandbox environment.
	Sandbox bool
	// BaseURL overrides the resolved base URL with a literal URL.
	BaseURL string
	// Env routes calls to a named sub-environment
	// (https://cloud.{env}.iexapis.com). Ignored when BaseURL is set.
	Env string
	// ProxyURL routes requests through the given proxy. Empty means no proxy.
	ProxyURL string
	Timeout  time.Duration
}

// Client is the IEX Cloud REST client.
type Client struct {
	opts ClientOpts

	proxyErr error

	do func(c *Client, req *http.Request) (*http.Response, error)
}

// NewClient creates a new IEX Cloud client using the given opts.
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
			opts.BaseURL = sandboxURL
		case opts.Env != "":
			opts.BaseURL = fmt.Sprintf("https://cloud.%s.iexapis.com", opts.Env)
		default:
			opts.BaseURL = cloudURL
		}
	}
	c := &Client{
		opts: opts,

		do: defaultDo,
	}
	if opts.ProxyURL != "" {
		if _, err := url.Parse(opts.ProxyURL); err != nil {
			c.proxyErr = fmt.Errorf("invalid proxy url: %w", err)
		}
	}
	return c
}

// DefaultClient uses options from environment variables, or the defaults.
var DefaultClient = NewClient(ClientOpts{})

func defaultDo(c *Client, req *http.Request) (*http.Response, error) {
	transport := http.DefaultTransport
	if c.opts.ProxyURL != "" {
		proxy, err := url.Parse(c.opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}
	client := &http.Client{
		Timeout:   c.opts.Timeout,
		Transport: transport,
	}
	// Exactly one network attempt per call: failures surface immediately.
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if err = verify(resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// version returns the effective API version. Sandbox routing always pins
// the version to "stable" regardless of the configured value.
func (c *Client) version() string {
	if c.opts.Sandbox {
		return apiVersionStable
	}
	return c.opts.Version
}

// token returns the credential for the next call, or ErrDeprecatedAPI when
// none is configured. The check happens before any network I/O.
func (c *Client) token() (string, error) {
	if c.opts.Token == "" {
		return "", ErrDeprecatedAPI
	}
	return c.opts.Token, nil
}

// requireSecret fails unless the configured token is a secret key.
func (c *Client) requireSecret() error {
	token, err := c.token()
	if err != nil {
		return err
	}
	if !tokens.IsSecret(token, true) {
		return errValidation("requires secret token")
	}
	return nil
}

// endpointURL builds {base}/{version}/{path} with the given query parameters.
func (c *Client) endpointURL(path string, q url.Values) (*url.URL, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.opts.BaseURL, "/"), c.version(), path))
	if err != nil {
		return nil, err
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// callParams carries the per-call dispatch parameters shared by all verbs.
type callParams struct {
	filter string
	format string
	query  url.Values
}

func (c *Client) buildQuery(token string, p callParams) url.Values {
	q := url.Values{}
	for k, vs := range p.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if token != "" {
		q.Set("token", token)
	}
	if p.filter != "" {
		q.Set("filter", p.filter)
	}
	if p.format != "" && p.format != "json" {
		q.Set("format", p.format)
	}
	return q
}

func (c *Client) get(path string, p callParams, v interface{}) error {
	if c.proxyErr != nil {
		return c.proxyErr
	}
	token, err := c.token()
	if err != nil {
		return err
	}
	u, err := c.endpointURL(path, c.buildQuery(token, p))
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(c, req)
	if err != nil {
		return err
	}
	return unmarshal(resp, v)
}

// getText performs a GET requesting a non-JSON response format and returns
// the raw decoded body. The format string is forwarded to the server as a
// query parameter.
func (c *Client) getText(path string, p callParams) (string, error) {
	if c.proxyErr != nil {
		return "", c.proxyErr
	}
	token, err := c.token()
	if err != nil {
		return "", err
	}
	u, err := c.endpointURL(path, c.buildQuery(token, p))
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(c, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// post sends data as a JSON body. When tokenInParams is false the token is
// omitted from the query string (for endpoints that embed it in the payload).
func (c *Client) post(path string, data interface{}, tokenInParams bool, p callParams, v interface{}) error {
	if c.proxyErr != nil {
		return c.proxyErr
	}
	token, err := c.token()
	if err != nil {
		return err
	}
	if !tokenInParams {
		token = ""
	}
	u, err := c.endpointURL(path, c.buildQuery(token, p))
	if err != nil {
		return err
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, u.String(), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(c, req)
	if err != nil {
		return err
	}
	if v == nil {
		return drain(resp)
	}
	return unmarshal(resp, v)
}

func (c *Client) delete(path string, p callParams, v interface{}) error {
	if c.proxyErr != nil {
		return c.proxyErr
	}
	token, err := c.token()
	if err != nil {
		return err
	}
	u, err := c.endpointURL(path, c.buildQuery(token, p))
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodDelete, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(c, req)
	if err != nil {
		return err
	}
	if v == nil {
		return drain(resp)
	}
	return unmarshal(resp, v)
}

// Raw fetches an arbitrary endpoint path and returns the undecoded JSON
// body. It is an escape hatch for endpoints without a typed wrapper yet.
func (c *Client) Raw(path, filter string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(path, callParams{filter: filter}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RawFormat fetches an arbitrary endpoint path in a non-JSON response
// format (e.g. "csv") and returns the raw body text.
func (c *Client) RawFormat(path, format string) (string, error) {
	return c.getText(path, callParams{format: format})
}

// APIError is returned for any non-200 HTTP response. It carries the exact
// status code and the response body text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iex: response %d - %s", e.StatusCode, e.Body)
}

// ErrDeprecatedAPI is returned when no token is configured. The historical
// free IEX API is permanently gone, so calls without a token cannot succeed.
var ErrDeprecatedAPI = errors.New(
	"iex: the legacy IEX API is deprecated; an IEX Cloud token is required (sign up at https://iexcloud.io)")

// ValidationError is returned when an input fails one of the parameter
// checks before any network I/O takes place.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "iex: " + e.Msg
}

func errValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func verify(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func unmarshal(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}
