// Package jsonrpc is a small JSON-RPC 2.0 over HTTP POST client.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// Version is the only protocol version the client emits.
const Version = "2.0"

// Request is a JSON-RPC request envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      any    `json:"id"`
}

// Response is a JSON-RPC response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      any             `json:"id"`

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int `json:"-"`
}

// Decode unmarshals the result into out.
func (r *Response) Decode(out any) error {
	if r.Error != nil {
		return r.Error
	}
	if len(r.Result) == 0 || string(r.Result) == "null" {
		return fmt.Errorf("response %v has no result", r.ID)
	}
	return json.Unmarshal(r.Result, out)
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Client posts envelopes to a single endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	header   http.Header
	nextID   atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(cl *Client) { cl.header.Add(key, value) }
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		header:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// NewRequest builds a 2.0 envelope with the next sequential id.
func (c *Client) NewRequest(method string, params any) Request {
	return Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}
}

// Call sends method with params and returns the decoded envelope. RPC-level
// errors are returned inside the Response, not as the error value.
func (c *Client) Call(ctx context.Context, method string, params any) (*Response, error) {
	return c.Post(ctx, c.NewRequest(method, params))
}

// CallResult is Call followed by Decode.
func (c *Client) CallResult(ctx context.Context, method string, params, out any) (*Response, error) {
	resp, err := c.Call(ctx, method, params)
	if err != nil {
		return nil, err
	}
	if err := resp.Decode(out); err != nil {
		return resp, fmt.Errorf("%s: %w", method, err)
	}
	return resp, nil
}

// Post sends an arbitrary body, which need not be a valid envelope.
func (c *Client) Post(ctx context.Context, body any) (*Response, error) {
	httpResp, err := c.PostHTTP(ctx, body, nil)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response (HTTP %d): %w: %s", httpResp.StatusCode, err, truncate(data, 256))
	}
	resp.StatusCode = httpResp.StatusCode
	return &resp, nil
}

// PostHTTP sends body and returns the raw HTTP response. The caller closes
// the body.
func (c *Client) PostHTTP(ctx context.Context, body any, header http.Header) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", c.endpoint, err)
	}
	return resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
