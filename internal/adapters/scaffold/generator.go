package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// DefaultGenerator is the published scaffold CLI.
var DefaultGenerator = []string{"npx", "create-8004-agent"}

// CommandGenerator produces projects by running the scaffold CLI
// non-interactively inside the work directory.
type CommandGenerator struct {
	command []string
	workDir string
	log     *slog.Logger
}

// NewCommandGenerator creates a generator for Wire dependency injection
func NewCommandGenerator(cfg *config.RuntimeConfig, log *slog.Logger) *CommandGenerator {
	command := cfg.Generator
	if len(command) == 0 {
		command = DefaultGenerator
	}
	return &CommandGenerator{command: command, workDir: cfg.WorkDir, log: log}
}

// Args returns the flags passed to the scaffold CLI for spec.
func Args(spec domain.ProjectSpec) []string {
	features := lo.Map(spec.Features, func(f domain.Feature, _ int) string { return string(f) })
	return []string{
		"--name", spec.Name,
		"--chain", string(spec.Chain),
		"--features", strings.Join(features, ","),
		"--streaming=" + strconv.FormatBool(spec.Streaming),
		"--yes",
	}
}

// Generate runs the scaffold CLI and returns the project directory.
func (g *CommandGenerator) Generate(ctx context.Context, spec domain.ProjectSpec) (*domain.Project, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	if err := os.MkdirAll(g.workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	dir := filepath.Join(g.workDir, spec.Name)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", dir, err)
	}

	argv := append(append([]string{}, g.command...), Args(spec)...)
	if _, err := runCommand(ctx, g.log, g.workDir, nil, argv...); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("generator did not create %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("generator output %s is not a directory", dir)
	}
	return &domain.Project{Spec: spec, Dir: dir}, nil
}

var _ usecase.ScaffoldGenerator = (*CommandGenerator)(nil)
