package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// MockMarker prefixes every reply once mock mode is enabled.
const MockMarker = "[MOCK]"

// mockGuard tags a rewritten agent file so Enable is idempotent.
const mockGuard = "// conform: mock mode"

var (
	chatFunc   = regexp.MustCompile(`export\s+async\s+function\s+chat\s*\(\s*(\w+)[^)]*\)\s*:\s*Promise<string>\s*\{`)
	streamFunc = regexp.MustCompile(`export\s+async\s+function\s*\*\s*streamResponse\s*\(\s*(\w+)[^)]*\)\s*:\s*AsyncGenerator<string>\s*\{`)
)

// MockModeInjector rewrites a project's agent so model calls return marker
// text instead of reaching a language-model provider.
type MockModeInjector struct {
	log *slog.Logger
}

// NewMockModeInjector creates an injector for Wire dependency injection
func NewMockModeInjector(log *slog.Logger) *MockModeInjector {
	return &MockModeInjector{log: log}
}

// Enable patches src/agent.ts in projectDir.
func (m *MockModeInjector) Enable(ctx context.Context, projectDir string) error {
	path := filepath.Join(projectDir, domain.AgentFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read agent: %w", err)
	}

	patched, err := InjectMockMode(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", domain.AgentFile, err)
	}
	if patched == string(data) {
		m.log.Debug("mock mode already enabled", "dir", projectDir)
		return nil
	}
	if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
		return fmt.Errorf("failed to write agent: %w", err)
	}
	m.log.Debug("mock mode enabled", "dir", projectDir)
	return nil
}

// InjectMockMode returns src with chat() short-circuited to a marker reply
// and, when present, streamResponse() yielding the same marker.
func InjectMockMode(src string) (string, error) {
	if strings.Contains(src, mockGuard) {
		return src, nil
	}

	m := chatFunc.FindStringSubmatchIndex(src)
	if m == nil {
		return "", fmt.Errorf("no chat() function to patch")
	}
	param := src[m[2]:m[3]]
	body := fmt.Sprintf("\n  %s\n  return '%s ' + (%s[%s.length - 1]?.content ?? '');\n",
		mockGuard, MockMarker, param, param)
	src = src[:m[1]] + body + src[m[1]:]

	if m := streamFunc.FindStringSubmatchIndex(src); m != nil {
		param := src[m[2]:m[3]]
		body := fmt.Sprintf("\n  %s\n  yield '%s ' + %s;\n  return;\n", mockGuard, MockMarker, param)
		src = src[:m[1]] + body + src[m[1]:]
	}
	return src, nil
}

var _ usecase.MockModeInjector = (*MockModeInjector)(nil)
