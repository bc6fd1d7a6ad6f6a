package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

const (
	clientName    = "conform"
	clientVersion = "0.1.0"

	DefaultRequestTimeout = 30 * time.Second
)

// Connector launches a project's stdio tool server and connects to it.
type Connector struct {
	runner  []string
	env     []string
	timeout time.Duration
	log     *slog.Logger
}

// NewConnector creates a connector for Wire dependency injection
func NewConnector(cfg *config.RuntimeConfig, log *slog.Logger) *Connector {
	runner := cfg.Runner
	if len(runner) == 0 {
		runner = []string{"npx", "tsx"}
	}
	return &Connector{runner: runner, timeout: cfg.RequestTimeout, log: log}
}

// Connect starts src/mcp-server.ts in projectDir and performs the handshake.
func (c *Connector) Connect(ctx context.Context, projectDir string) (usecase.ToolSession, error) {
	if len(c.runner) == 0 {
		return nil, errors.New("no runner configured")
	}
	args := append(append([]string{}, c.runner[1:]...), filepath.Join("src", domain.MCPEntrypoint))
	cmd := exec.Command(c.runner[0], args...)
	cmd.Dir = projectDir
	cmd.Env = append(os.Environ(), c.env...)

	c.log.Debug("starting tool server", "dir", projectDir, "command", cmd.String())
	s, err := ConnectTransport(ctx, &sdk.CommandTransport{Command: cmd}, c.timeout)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ConnectTransport performs the client handshake over any transport. The
// handshake and every later call are bounded by timeout; zero means
// DefaultRequestTimeout.
func ConnectTransport(ctx context.Context, transport sdk.Transport, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := sdk.NewClient(&sdk.Implementation{Name: clientName, Version: clientVersion}, nil)
	cs, err := client.Connect(connectCtx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool server: %w", err)
	}
	return &Session{cs: cs, timeout: timeout}, nil
}

// Session is a connected tool-protocol session.
type Session struct {
	cs      *sdk.ClientSession
	timeout time.Duration
}

// ListTools returns every tool the server advertises.
func (s *Session) ListTools(ctx context.Context) ([]domain.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.cs.ListTools(ctx, &sdk.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}
	tools := make([]domain.Tool, 0, len(res.Tools))
	for _, t := range res.Tools {
		tools = append(tools, domain.Tool{Name: t.Name, Description: t.Description})
	}
	return tools, nil
}

// CallTool invokes name and returns its text content blocks.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*domain.ToolResult, error) {
	if args == nil {
		args = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.cs.CallTool(ctx, &sdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("tools/call %s: %w", name, err)
	}

	out := &domain.ToolResult{IsError: res.IsError}
	for _, content := range res.Content {
		if text, ok := content.(*sdk.TextContent); ok {
			out.Texts = append(out.Texts, text.Text)
		}
	}
	if out.IsError {
		return out, fmt.Errorf("tool %s returned an error: %v", name, out.Texts)
	}
	return out, nil
}

// Close ends the session and stops the server.
func (s *Session) Close() error {
	return s.cs.Close()
}

var (
	_ usecase.ToolConnector = (*Connector)(nil)
	_ usecase.ToolSession   = (*Session)(nil)
)
