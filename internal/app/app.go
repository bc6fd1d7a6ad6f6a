package app

import (
	"log/slog"

	"github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Selector usecase.ChainSelector

	// Use cases
	RunConformance *usecase.RunConformance
	ListChains     *usecase.ListChains
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	selector usecase.ChainSelector,
	runConformance *usecase.RunConformance,
	listChains *usecase.ListChains,
) (*App, error) {
	return &App{
		Config:         cfg,
		Log:            log,
		Selector:       selector,
		RunConformance: runConformance,
		ListChains:     listChains,
	}, nil
}
