package scaffold

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
)

const sampleAgent = `import OpenAI from 'openai';

export interface AgentMessage {
  role: 'user' | 'assistant' | 'system';
  content: string;
}

export async function* streamResponse(userMessage: string, history: AgentMessage[] = []): AsyncGenerator<string> {
  const stream = await openai.chat.completions.create({ stream: true });
  for await (const chunk of stream) {
    yield chunk;
  }
}

export async function chat(messages: AgentMessage[]): Promise<string> {
  const response = await openai.chat.completions.create({ messages });
  return response.choices[0]?.message?.content ?? 'No response';
}
`

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestArgs(t *testing.T) {
	spec := domain.ProjectSpec{
		Name:      "a2a-base-sepolia",
		Chain:     "base-sepolia",
		Features:  []domain.Feature{domain.FeatureA2A, domain.FeatureX402},
		Streaming: true,
	}

	assert.Equal(t, []string{
		"--name", "a2a-base-sepolia",
		"--chain", "base-sepolia",
		"--features", "a2a,x402",
		"--streaming=true",
		"--yes",
	}, Args(spec))
}

func TestCommandGenerator_Generate(t *testing.T) {
	requireShell(t)
	workDir := t.TempDir()
	cfg := &config.RuntimeConfig{
		WorkDir:   workDir,
		Generator: []string{"sh", "-c", `mkdir -p "$2" && echo "$@" > "$2/args.txt"`, "generator"},
	}
	spec := domain.ProjectSpec{Name: "mcp-eth-sepolia", Chain: "eth-sepolia", Features: []domain.Feature{domain.FeatureMCP}}

	project, err := NewCommandGenerator(cfg, discard()).Generate(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(workDir, "mcp-eth-sepolia"), project.Dir)
	assert.Equal(t, spec, project.Spec)

	args, err := os.ReadFile(filepath.Join(project.Dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "--name mcp-eth-sepolia --chain eth-sepolia --features mcp --streaming=false --yes", strings.TrimSpace(string(args)))
}

func TestCommandGenerator_Failures(t *testing.T) {
	requireShell(t)
	spec := domain.ProjectSpec{Name: "p", Chain: "base-sepolia"}

	tests := []struct {
		name    string
		command []string
		wantErr string
	}{
		{"command fails", []string{"sh", "-c", "echo boom >&2; exit 3"}, "boom"},
		{"no project directory", []string{"true"}, "did not create"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.RuntimeConfig{WorkDir: t.TempDir(), Generator: tt.command}
			_, err := NewCommandGenerator(cfg, discard()).Generate(context.Background(), spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommandInstaller_Install(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	cfg := &config.RuntimeConfig{Installer: []string{"sh", "-c", "touch installed"}}

	require.NoError(t, NewCommandInstaller(cfg, discard()).Install(context.Background(), dir))

	_, err := os.Stat(filepath.Join(dir, "installed"))
	assert.NoError(t, err)
}

func TestInjectMockMode(t *testing.T) {
	out, err := InjectMockMode(sampleAgent)
	require.NoError(t, err)

	assert.Contains(t, out, "return '[MOCK] ' + (messages[messages.length - 1]?.content ?? '');")
	assert.Contains(t, out, "yield '[MOCK] ' + userMessage;")
	assert.Equal(t, 2, strings.Count(out, mockGuard))

	again, err := InjectMockMode(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestInjectMockMode_WithoutStreaming(t *testing.T) {
	src := sampleAgent[strings.Index(sampleAgent, "export async function chat"):]

	out, err := InjectMockMode(src)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, mockGuard))
	assert.NotContains(t, out, "yield '[MOCK]")
}

func TestInjectMockMode_NoChat(t *testing.T) {
	_, err := InjectMockMode("export const x = 1;\n")
	assert.Error(t, err)
}

func TestMockModeInjector_Enable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.AgentFile), []byte(sampleAgent), 0644))

	injector := NewMockModeInjector(discard())
	require.NoError(t, injector.Enable(context.Background(), dir))
	require.NoError(t, injector.Enable(context.Background(), dir))

	data, err := os.ReadFile(filepath.Join(dir, domain.AgentFile))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), mockGuard))
}

func TestMockModeInjector_MissingAgent(t *testing.T) {
	err := NewMockModeInjector(discard()).Enable(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestEnvWriter_WriteEnv(t *testing.T) {
	tests := []struct {
		name    string
		example string
		want    string
	}{
		{
			name: "seeded from example",
			example: "# Agent\nOPENAI_API_KEY=your_openai_api_key\nPINATA_JWT=\n" +
				"X402_PAYEE_ADDRESS=0xABCDEF0123456789ABCDEF0123456789ABCDEF01\nX402_PRICE=$0.001\nPORT=3000\n",
			want: "# Agent\nOPENAI_API_KEY=mock\nPINATA_JWT=mock\n" +
				"X402_PAYEE_ADDRESS=0xABCDEF0123456789ABCDEF0123456789ABCDEF01\nX402_PRICE=$0.001\nPORT=30001\n",
		},
		{
			name:    "empty payee replaced",
			example: "X402_PAYEE_ADDRESS=\n",
			want: "X402_PAYEE_ADDRESS=" + DefaultPayee + "\nPORT=30001\nOPENAI_API_KEY=mock\nPINATA_JWT=mock\n" +
				"X402_PRICE=$0.001\n",
		},
		{
			name: "no example",
			want: "PORT=30001\nOPENAI_API_KEY=mock\nPINATA_JWT=mock\nX402_PAYEE_ADDRESS=" + DefaultPayee +
				"\nX402_PRICE=$0.001\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.example != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, domain.EnvExampleFile), []byte(tt.example), 0644))
			}

			require.NoError(t, NewEnvWriter().WriteEnv(dir, 30001))

			data, err := os.ReadFile(filepath.Join(dir, domain.EnvFile))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".well-known"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.AgentCardFile), []byte(`{"name":"x"}`), 0644))

	files := NewFiles()

	ok, err := files.Exists(dir, domain.AgentCardFile)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = files.Exists(dir, domain.ReadmeFile)
	require.NoError(t, err)
	assert.False(t, ok)

	content, err := files.Read(dir, domain.AgentCardFile)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, content)

	_, err = files.Read(dir, domain.ReadmeFile)
	assert.Error(t, err)
}
