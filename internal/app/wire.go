//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/mahzoun/create-8004-agent/internal/adapters"
	"github.com/mahzoun/create-8004-agent/internal/config"
	"github.com/mahzoun/create-8004-agent/internal/logging"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewRunConformance,
		usecase.NewListChains,

		// App
		NewApp,
	)
	return nil, nil
}
