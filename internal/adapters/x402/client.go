package x402

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
	"github.com/mahzoun/create-8004-agent/pkg/retry"
)

const (
	rpcPath = "/a2a"

	DefaultProbeAttempts = 3
	DefaultProbeDelay    = 500 * time.Millisecond
	DefaultTimeout       = 30 * time.Second
)

// Client talks to a payment-gated task endpoint.
type Client struct {
	rpc     *jsonrpc.Client
	network domain.CAIP2
	payer   *ecdsa.PrivateKey
	probe   retry.Policy
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProbePolicy overrides the retry policy used by Probe.
func WithProbePolicy(p retry.Policy) Option {
	return func(c *Client) { c.probe = p }
}

// WithClock overrides the time source used for authorization windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the server at baseURL. payer may be nil,
// in which case only Probe is usable.
func NewClient(baseURL string, network domain.CAIP2, payer *ecdsa.PrivateKey, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		rpc:     jsonrpc.NewClient(strings.TrimRight(baseURL, "/")+rpcPath, jsonrpc.WithHTTPClient(httpClient)),
		network: network,
		payer:   payer,
		probe:   retry.Fixed(DefaultProbeAttempts, DefaultProbeDelay),
		now:     time.Now,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe posts body without payment and returns the HTTP status. Only
// transport failures are retried; any HTTP response ends the loop.
func (c *Client) Probe(ctx context.Context, body any) (int, error) {
	return retry.Value(ctx, c.probe, func(ctx context.Context, attempt int) (int, error) {
		resp, err := c.rpc.PostHTTP(ctx, body, nil)
		if err != nil {
			c.log.Debug("payment probe failed", "attempt", attempt, "error", err)
			return 0, err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode, nil
	})
}

// PaidRequest performs the full 402 round trip: it reads the challenge,
// signs a transfer authorization for the matching requirement and resends
// body with the payment attached.
func (c *Client) PaidRequest(ctx context.Context, body any) (*domain.PaidReply, error) {
	if c.payer == nil {
		return nil, errors.New("no payer key configured")
	}

	challenge, err := c.challenge(ctx, body)
	if err != nil {
		return nil, err
	}

	req, ok := challenge.Select(SchemeExact, string(c.network))
	if !ok {
		return nil, fmt.Errorf("%w: no %q requirement for %s", domain.ErrNoPaymentRequirements, SchemeExact, c.network)
	}
	chainID, err := c.network.EVMChainID()
	if err != nil {
		return nil, err
	}

	exact, err := Sign(c.payer, req, chainID, c.now())
	if err != nil {
		return nil, err
	}
	name, value, err := NewPayload(challenge, req, exact).Encode()
	if err != nil {
		return nil, err
	}
	c.log.Debug("sending paid request", "header", name, "payer", exact.Authorization.From, "amount", req.Value())

	header := http.Header{}
	header.Set(name, value)
	resp, err := c.rpc.PostHTTP(ctx, body, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reply := &domain.PaidReply{
		StatusCode: resp.StatusCode,
		Settlement: firstHeader(resp.Header, HeaderPaymentResponse, HeaderPaymentResponseV1),
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply, fmt.Errorf("failed to read paid response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return reply, domain.Violation("paid request status", http.StatusOK, resp.StatusCode)
	}

	var envelope jsonrpc.Response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return reply, fmt.Errorf("failed to decode paid response: %w", err)
	}
	var task domain.Task
	if err := envelope.Decode(&task); err != nil {
		return reply, err
	}
	reply.Reply = &domain.TaskReply{JSONRPC: envelope.JSONRPC, Task: &task, HTTPStatus: resp.StatusCode}
	return reply, nil
}

func (c *Client) challenge(ctx context.Context, body any) (*domain.PaymentChallenge, error) {
	resp, err := c.rpc.PostHTTP(ctx, body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge: %w", err)
	}
	if resp.StatusCode != http.StatusPaymentRequired {
		return nil, domain.Violation("unpaid request status", http.StatusPaymentRequired, resp.StatusCode)
	}
	return ParseChallenge(resp.Header, data)
}

func firstHeader(h http.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Factory creates payment clients sharing one HTTP client.
type Factory struct {
	http  *http.Client
	probe retry.Policy
	log   *slog.Logger
}

// NewFactory creates a payment client factory for Wire dependency injection
func NewFactory(cfg *config.RuntimeConfig, log *slog.Logger) *Factory {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	attempts := cfg.ProbeAttempts
	if attempts <= 0 {
		attempts = DefaultProbeAttempts
	}
	delay := cfg.ProbeDelay
	if delay <= 0 {
		delay = DefaultProbeDelay
	}
	return &Factory{
		http:  &http.Client{Timeout: timeout},
		probe: retry.Fixed(attempts, delay),
		log:   log,
	}
}

// NewPaymentClient creates a client for baseURL paying on network.
func (f *Factory) NewPaymentClient(baseURL string, network domain.CAIP2, payer *ecdsa.PrivateKey) usecase.PaymentClient {
	return NewClient(baseURL, network, payer, f.http, WithProbePolicy(f.probe), WithLogger(f.log))
}

var (
	_ usecase.PaymentClient        = (*Client)(nil)
	_ usecase.PaymentClientFactory = (*Factory)(nil)
)
