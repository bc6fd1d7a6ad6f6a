package scaffold

import (
	"context"
	"log/slog"

	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// DefaultInstaller installs a generated project's dependencies.
var DefaultInstaller = []string{"npm", "install"}

// CommandInstaller runs the package manager in a project directory.
type CommandInstaller struct {
	command []string
	log     *slog.Logger
}

// NewCommandInstaller creates an installer for Wire dependency injection
func NewCommandInstaller(cfg *config.RuntimeConfig, log *slog.Logger) *CommandInstaller {
	command := cfg.Installer
	if len(command) == 0 {
		command = DefaultInstaller
	}
	return &CommandInstaller{command: command, log: log}
}

// Install runs the install command in projectDir.
func (i *CommandInstaller) Install(ctx context.Context, projectDir string) error {
	_, err := runCommand(ctx, i.log, projectDir, nil, i.command...)
	return err
}

var _ usecase.DependencyInstaller = (*CommandInstaller)(nil)
