package usecase

import (
	"context"
	"crypto/ecdsa"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

// PortAllocator hands out TCP ports for supervised servers
type PortAllocator interface {
	NextPort() int
	Reset()
}

// ManagedProcess is a supervised server owned by exactly one sub-suite
type ManagedProcess interface {
	Port() int
	State() domain.ProcessState
	Status() domain.ProcessStatus
	// Output returns captured stdout/stderr for diagnostics
	Output() string
}

// ProcessSupervisor starts and stops generated project servers
type ProcessSupervisor interface {
	Start(ctx context.Context, projectDir, entrypoint string, port int) (ManagedProcess, error)
	Stop(mp ManagedProcess) error
}

// ScaffoldGenerator produces a project directory from a project spec
type ScaffoldGenerator interface {
	Generate(ctx context.Context, spec domain.ProjectSpec) (*domain.Project, error)
}

// DependencyInstaller installs a generated project's dependencies
type DependencyInstaller interface {
	Install(ctx context.Context, projectDir string) error
}

// MockModeInjector rewires the language-model path to return marker text
type MockModeInjector interface {
	Enable(ctx context.Context, projectDir string) error
}

// EnvWriter writes the project's environment file, including its port
type EnvWriter interface {
	WriteEnv(projectDir string, port int) error
}

// ProjectFiles reads generated files
type ProjectFiles interface {
	Exists(projectDir, rel string) (bool, error)
	Read(projectDir, rel string) (string, error)
}

// ChainCatalog resolves chain keys to catalog entries
type ChainCatalog interface {
	All() []domain.Chain
	Get(key domain.ChainKey) (domain.Chain, error)
}

// ChainSelector asks the user which chains to run
type ChainSelector interface {
	SelectChains(ctx context.Context, chains []domain.Chain) ([]domain.ChainKey, error)
}

// AgentTaskClient speaks the agent-to-agent task protocol
type AgentTaskClient interface {
	GetAgentCard(ctx context.Context) (*domain.AgentCard, error)
	SendMessage(ctx context.Context, text, contextID string) (*domain.TaskReply, error)
	GetTask(ctx context.Context, id string) (*domain.TaskReply, error)
	CancelTask(ctx context.Context, id string) (*domain.TaskReply, error)
	StreamMessage(ctx context.Context, text string) (*domain.StreamReply, error)
	// Raw posts an arbitrary envelope, valid or not
	Raw(ctx context.Context, body any) (*jsonrpc.Response, error)
}

// AgentTaskClientFactory creates a task client for a server base URL
type AgentTaskClientFactory interface {
	NewAgentTaskClient(baseURL string) AgentTaskClient
}

// ToolSession is a connected tool-protocol session
type ToolSession interface {
	ListTools(ctx context.Context) ([]domain.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*domain.ToolResult, error)
	Close() error
}

// ToolConnector launches a project's tool server and connects to it
type ToolConnector interface {
	Connect(ctx context.Context, projectDir string) (ToolSession, error)
}

// PaymentClient drives the 402 challenge / paid retry flow
type PaymentClient interface {
	// Probe sends an unpaid request and returns the HTTP status
	Probe(ctx context.Context, body any) (int, error)
	// PaidRequest answers the challenge and resends body with payment proof
	PaidRequest(ctx context.Context, body any) (*domain.PaidReply, error)
}

// PaymentClientFactory creates payment clients bound to a network and payer
type PaymentClientFactory interface {
	NewPaymentClient(baseURL string, network domain.CAIP2, payer *ecdsa.PrivateKey) PaymentClient
}

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
