package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

const (
	// RPCPath is where the agent-task endpoint is mounted.
	RPCPath = "/a2a"
	// CardPath is the well-known discovery document.
	CardPath = "/.well-known/agent-card.json"

	MethodSend   = "message/send"
	MethodStream = "message/stream"
	MethodGet    = "tasks/get"
	MethodCancel = "tasks/cancel"

	DefaultRequestTimeout = 30 * time.Second
	// DefaultStreamIdle ends a stream that went quiet after its first event.
	DefaultStreamIdle = 2 * time.Second
)

// Client drives the agent-to-agent task protocol against one server.
type Client struct {
	baseURL    string
	http       *http.Client
	rpc        *jsonrpc.Client
	streamIdle time.Duration
	log        *slog.Logger
}

// NewClient creates a client for a server listening at baseURL.
func NewClient(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL:    baseURL,
		http:       httpClient,
		rpc:        jsonrpc.NewClient(baseURL+RPCPath, jsonrpc.WithHTTPClient(httpClient)),
		streamIdle: DefaultStreamIdle,
		log:        log,
	}
}

// BaseURL returns the server root.
func (c *Client) BaseURL() string { return c.baseURL }

type messageParams struct {
	Message   domain.Message `json:"message"`
	ContextID string         `json:"contextId,omitempty"`
}

type taskIDParams struct {
	ID string `json:"id"`
}

// SendParams builds message/send params for a user text message.
func SendParams(text, contextID string) any {
	return messageParams{Message: domain.NewTextMessage(domain.RoleUser, text), ContextID: contextID}
}

// GetAgentCard fetches the discovery document.
func (c *Client) GetAgentCard(ctx context.Context) (*domain.AgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+CardPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", CardPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Violation("GET "+CardPath+" status", http.StatusOK, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent card: %w", err)
	}
	if err := ValidateCard(raw); err != nil {
		return nil, err
	}

	var card domain.AgentCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return nil, fmt.Errorf("failed to decode agent card: %w", err)
	}
	return &card, nil
}

// SendMessage invokes message/send with a single text part.
func (c *Client) SendMessage(ctx context.Context, text, contextID string) (*domain.TaskReply, error) {
	return c.callTask(ctx, MethodSend, SendParams(text, contextID))
}

// GetTask invokes tasks/get.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.TaskReply, error) {
	return c.callTask(ctx, MethodGet, taskIDParams{ID: id})
}

// CancelTask invokes tasks/cancel.
func (c *Client) CancelTask(ctx context.Context, id string) (*domain.TaskReply, error) {
	return c.callTask(ctx, MethodCancel, taskIDParams{ID: id})
}

// Raw posts body as-is, for envelopes the client would never build itself.
func (c *Client) Raw(ctx context.Context, body any) (*jsonrpc.Response, error) {
	return c.rpc.Post(ctx, body)
}

func (c *Client) callTask(ctx context.Context, method string, params any) (*domain.TaskReply, error) {
	c.log.Debug("a2a call", "method", method, "endpoint", c.rpc.Endpoint())

	var task domain.Task
	resp, err := c.rpc.CallResult(ctx, method, params, &task)
	if err != nil {
		return nil, err
	}
	return &domain.TaskReply{
		JSONRPC:    resp.JSONRPC,
		Task:       &task,
		HTTPStatus: resp.StatusCode,
	}, nil
}

// StreamMessage invokes message/stream and collects server-sent events until
// one marks itself final, the server closes the stream, or the stream stays
// idle for the stream idle period after delivering at least one event.
func (c *Client) StreamMessage(ctx context.Context, text string) (*domain.StreamReply, error) {
	header := http.Header{}
	header.Set("Accept", "text/event-stream")

	resp, err := c.rpc.PostHTTP(ctx, c.rpc.NewRequest(MethodStream, SendParams(text, "")), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: HTTP %d: %s", MethodStream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	reply := &domain.StreamReply{ContentType: resp.Header.Get("Content-Type")}
	if !IsEventStream(reply.ContentType) {
		return reply, domain.Violation("Content-Type", "text/event-stream", reply.ContentType)
	}

	var (
		idle  *time.Timer
		idled atomic.Bool
	)
	err = ScanEvents(resp.Body, func(ev domain.StreamEvent) bool {
		reply.Events = append(reply.Events, ev)
		if IsFinalEvent(ev) {
			return false
		}
		if idle == nil {
			idle = time.AfterFunc(c.streamIdle, func() {
				idled.Store(true)
				_ = resp.Body.Close()
			})
		} else {
			idle.Reset(c.streamIdle)
		}
		return true
	})
	if idle != nil {
		idle.Stop()
	}
	if err != nil && !idled.Load() {
		return reply, fmt.Errorf("failed to read event stream: %w", err)
	}
	c.log.Debug("stream finished", "events", len(reply.Events), "idle", idled.Load())
	return reply, nil
}

// IsEventStream reports whether a Content-Type header denotes SSE.
func IsEventStream(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/event-stream")
}

// Factory creates clients sharing one HTTP client.
type Factory struct {
	http *http.Client
	log  *slog.Logger
}

// NewFactory creates a client factory for Wire dependency injection
func NewFactory(cfg *config.RuntimeConfig, log *slog.Logger) *Factory {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Factory{http: &http.Client{Timeout: timeout}, log: log}
}

// NewAgentTaskClient creates a client for baseURL.
func (f *Factory) NewAgentTaskClient(baseURL string) usecase.AgentTaskClient {
	return NewClient(baseURL, f.http, f.log)
}

var (
	_ usecase.AgentTaskClient        = (*Client)(nil)
	_ usecase.AgentTaskClientFactory = (*Factory)(nil)
)
