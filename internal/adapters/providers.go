package adapters

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/wire"

	"github.com/mahzoun/create-8004-agent/internal/adapters/a2a"
	"github.com/mahzoun/create-8004-agent/internal/adapters/interactive"
	"github.com/mahzoun/create-8004-agent/internal/adapters/mcp"
	"github.com/mahzoun/create-8004-agent/internal/adapters/portalloc"
	"github.com/mahzoun/create-8004-agent/internal/adapters/process"
	"github.com/mahzoun/create-8004-agent/internal/adapters/progress"
	"github.com/mahzoun/create-8004-agent/internal/adapters/scaffold"
	"github.com/mahzoun/create-8004-agent/internal/adapters/x402"
	"github.com/mahzoun/create-8004-agent/internal/config"
	domainconfig "github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// ProvideProgressSink writes progress next to table output, or to stderr
// when stdout carries a machine-readable report.
func ProvideProgressSink(cfg *domainconfig.RuntimeConfig) usecase.ProgressSink {
	var out io.Writer = os.Stdout
	if cfg.Format != config.FormatTable {
		out = os.Stderr
	}
	return progress.NewSpinnerSink(out, !cfg.NonInteractive && !color.NoColor)
}

// CatalogSet provides the embedded chain catalog
var CatalogSet = wire.NewSet(
	config.NewChainCatalog,
	wire.Bind(new(usecase.ChainCatalog), new(*config.ChainCatalog)),
)

// ProcessSet provides port allocation and server supervision
var ProcessSet = wire.NewSet(
	portalloc.NewAllocator,
	wire.Bind(new(usecase.PortAllocator), new(*portalloc.Allocator)),

	process.NewSupervisor,
	wire.Bind(new(usecase.ProcessSupervisor), new(*process.Supervisor)),
)

// ScaffoldSet provides project generation and preparation
var ScaffoldSet = wire.NewSet(
	scaffold.NewCommandGenerator,
	wire.Bind(new(usecase.ScaffoldGenerator), new(*scaffold.CommandGenerator)),

	scaffold.NewCommandInstaller,
	wire.Bind(new(usecase.DependencyInstaller), new(*scaffold.CommandInstaller)),

	scaffold.NewMockModeInjector,
	wire.Bind(new(usecase.MockModeInjector), new(*scaffold.MockModeInjector)),

	scaffold.NewEnvWriter,
	wire.Bind(new(usecase.EnvWriter), new(*scaffold.EnvWriter)),

	scaffold.NewFiles,
	wire.Bind(new(usecase.ProjectFiles), new(*scaffold.Files)),
)

// ProtocolSet provides the protocol clients checks speak through
var ProtocolSet = wire.NewSet(
	a2a.NewFactory,
	wire.Bind(new(usecase.AgentTaskClientFactory), new(*a2a.Factory)),

	mcp.NewConnector,
	wire.Bind(new(usecase.ToolConnector), new(*mcp.Connector)),

	x402.NewFactory,
	wire.Bind(new(usecase.PaymentClientFactory), new(*x402.Factory)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.ChainSelector), new(*interactive.SelectorAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideProgressSink,
	CatalogSet,
	ProcessSet,
	ScaffoldSet,
	ProtocolSet,
	InteractiveSet,
)
