package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// Placeholder values written for a mock-mode run.
const (
	MockSecret       = "mock"
	DefaultPayee     = "0x000000000000000000000000000000000000dEaD"
	DefaultX402Price = "$0.001"
)

var envLine = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// EnvWriter writes a generated project's .env file.
type EnvWriter struct{}

// NewEnvWriter creates an env writer for Wire dependency injection
func NewEnvWriter() *EnvWriter {
	return &EnvWriter{}
}

// WriteEnv seeds .env from .env.example, then pins the port and replaces
// secrets with placeholders. Comments and unrelated keys are kept.
func (EnvWriter) WriteEnv(projectDir string, port int) error {
	example, err := os.ReadFile(filepath.Join(projectDir, domain.EnvExampleFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", domain.EnvExampleFile, err)
	}

	out := RenderEnv(string(example), []EnvValue{
		{Key: "PORT", Value: strconv.Itoa(port)},
		{Key: "OPENAI_API_KEY", Value: MockSecret},
		{Key: "PINATA_JWT", Value: MockSecret},
		{Key: "X402_PAYEE_ADDRESS", Value: DefaultPayee, KeepExisting: true},
		{Key: "X402_PRICE", Value: DefaultX402Price, KeepExisting: true},
	})

	if err := os.WriteFile(filepath.Join(projectDir, domain.EnvFile), []byte(out), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", domain.EnvFile, err)
	}
	return nil
}

// EnvValue is one assignment applied by RenderEnv.
type EnvValue struct {
	Key   string
	Value string
	// KeepExisting leaves a non-empty value in the template untouched.
	KeepExisting bool
}

// RenderEnv applies values to a dotenv template. Existing assignments are
// rewritten in place and missing keys are appended. Values are written
// without backslash escapes, which the Node dotenv loader would keep.
func RenderEnv(template string, values []EnvValue) string {
	pending := make(map[string]EnvValue, len(values))
	for _, v := range values {
		pending[v.Key] = v
	}

	var lines []string
	if strings.TrimSpace(template) != "" {
		lines = strings.Split(strings.TrimRight(template, "\n"), "\n")
	}
	for i, line := range lines {
		m := envLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, ok := pending[m[1]]
		if !ok {
			continue
		}
		delete(pending, m[1])
		if v.KeepExisting && unquote(m[2]) != "" {
			continue
		}
		lines[i] = v.Key + "=" + quote(v.Value)
	}

	for _, v := range values {
		if _, ok := pending[v.Key]; ok {
			lines = append(lines, v.Key+"="+quote(v.Value))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func quote(v string) string {
	if strings.ContainsAny(v, " \t#\"'") && !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	return v
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	return v
}

var _ usecase.EnvWriter = EnvWriter{}
