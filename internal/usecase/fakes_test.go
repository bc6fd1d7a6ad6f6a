package usecase

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/pkg/jsonrpc"
)

// passingFiles makes every file-based check pass for Base Sepolia.
var passingFiles = map[string]string{
	domain.A2AServerFile: "import { streamResponse } from './agent.js';\n" +
		"res.setHeader('Content-Type', 'text/event-stream');\n" +
		"app.use(paymentMiddleware({ payTo: process.env.X402_PAYEE_ADDRESS, network: 'eip155:84532' }, new x402ResourceServer().register(new ExactEvmScheme())));\n",
	domain.AgentFile:       "export async function chat() {}",
	domain.AgentCardFile:   `{"name":"agent"}`,
	domain.PackageJSONFile: `{"dependencies":{"@x402/express":"^2","@x402/core":"^2","@x402/evm":"^2"}}`,
	domain.ReadmeFile: "# Agent for Base Sepolia and Monad\n## Quick Start\n### Configure environment\nPINATA_JWT OPENAI_API_KEY\n" +
		"### Fund your wallet\nnpm run register\nOASF skills\n",
	domain.MCPServerFile: "server.tool('chat')",
	domain.ToolsFile:     "export const tools = []",
	domain.RegisterFile:  "import { SDK } from 'agent0-sdk';\nconst sdk = new SDK({ chainId: 84532 });\nagent.setTrust(true);\nawait agent.registerIPFS();\n",
}

type fakeCatalog struct {
	chains map[domain.ChainKey]domain.Chain
}

func newFakeCatalog(chains ...domain.Chain) *fakeCatalog {
	c := &fakeCatalog{chains: map[domain.ChainKey]domain.Chain{}}
	for _, ch := range chains {
		c.chains[ch.Key] = ch
	}
	return c
}

func (c *fakeCatalog) All() []domain.Chain {
	var out []domain.Chain
	for _, ch := range c.chains {
		out = append(out, ch)
	}
	return out
}

func (c *fakeCatalog) Get(key domain.ChainKey) (domain.Chain, error) {
	ch, ok := c.chains[key]
	if !ok {
		return domain.Chain{}, domain.UnknownChainError{Key: string(key)}
	}
	return ch, nil
}

type fakePorts struct {
	next   int
	resets int
}

func (p *fakePorts) NextPort() int {
	p.next++
	return 40000 + p.next
}

func (p *fakePorts) Reset() {
	p.resets++
	p.next = 0
}

type fakeProcess struct {
	dir   string
	port  int
	state domain.ProcessState
}

func (p *fakeProcess) Port() int                  { return p.port }
func (p *fakeProcess) State() domain.ProcessState { return p.state }
func (p *fakeProcess) Output() string             { return "" }
func (p *fakeProcess) Status() domain.ProcessStatus {
	return domain.ProcessStatus{ProjectDir: p.dir, Port: p.port, State: p.state}
}

// fakeSupervisor tracks live processes and fails when a port is reused
// while its previous owner is still running.
type fakeSupervisor struct {
	mu       sync.Mutex
	live     map[int]*fakeProcess
	started  []*fakeProcess
	stopped  int
	startErr func(dir string) error
	reuse    error
}

func newFakeSupervisor() *fakeSupervisor {
	return &fakeSupervisor{live: map[int]*fakeProcess{}}
}

func (s *fakeSupervisor) Start(ctx context.Context, dir, entrypoint string, port int) (ManagedProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &fakeProcess{dir: dir, port: port, state: domain.ProcessReady}
	s.started = append(s.started, p)
	if _, busy := s.live[port]; busy {
		s.reuse = fmt.Errorf("port %d reused while live", port)
	}
	if s.startErr != nil {
		if err := s.startErr(dir); err != nil {
			p.state = domain.ProcessFailed
			return p, &domain.StartupError{Entrypoint: entrypoint, Port: port, Elapsed: time.Second, Cause: err}
		}
	}
	s.live[port] = p
	return p, nil
}

func (s *fakeSupervisor) Stop(mp ManagedProcess) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := mp.(*fakeProcess)
	if p.state == domain.ProcessStopped {
		return nil
	}
	p.state = domain.ProcessStopped
	delete(s.live, p.port)
	s.stopped++
	return nil
}

func (s *fakeSupervisor) dirFor(baseURL string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for port, p := range s.live {
		if strings.HasSuffix(baseURL, fmt.Sprintf(":%d", port)) {
			return p.dir
		}
	}
	return ""
}

type fakeGenerator struct {
	root      string
	generated []string
	err       func(spec domain.ProjectSpec) error
}

func (g *fakeGenerator) Generate(ctx context.Context, spec domain.ProjectSpec) (*domain.Project, error) {
	if g.err != nil {
		if err := g.err(spec); err != nil {
			return nil, err
		}
	}
	g.generated = append(g.generated, spec.Name)
	return &domain.Project{Spec: spec, Dir: filepath.Join(g.root, spec.Name)}, nil
}

type fakeInstaller struct {
	err func(dir string) error
}

func (i *fakeInstaller) Install(ctx context.Context, dir string) error {
	if i.err != nil {
		return i.err(dir)
	}
	return nil
}

type fakeMock struct{ enabled []string }

func (m *fakeMock) Enable(ctx context.Context, dir string) error {
	m.enabled = append(m.enabled, dir)
	return nil
}

type fakeEnv struct{ ports map[string]int }

func (e *fakeEnv) WriteEnv(dir string, port int) error {
	if e.ports == nil {
		e.ports = map[string]int{}
	}
	e.ports[dir] = port
	return nil
}

type fakeFiles struct{ content map[string]string }

func (f *fakeFiles) Exists(dir, rel string) (bool, error) {
	_, ok := f.content[rel]
	return ok, nil
}

func (f *fakeFiles) Read(dir, rel string) (string, error) {
	c, ok := f.content[rel]
	if !ok {
		return "", fmt.Errorf("failed to read %s: no such file", rel)
	}
	return c, nil
}

// fakeTaskClient answers like a well-behaved generated server.
type fakeTaskClient struct {
	streaming bool
	onSend    func()
}

func completed(id, contextID, text string) *domain.TaskReply {
	return &domain.TaskReply{
		JSONRPC: "2.0",
		Task: &domain.Task{
			ID:        id,
			ContextID: contextID,
			Status:    domain.TaskCompleted,
			Messages: []domain.Message{
				domain.NewTextMessage(domain.RoleUser, text),
				domain.NewTextMessage(domain.RoleAgent, "[MOCK] "+text),
			},
		},
		HTTPStatus: http.StatusOK,
	}
}

func (c *fakeTaskClient) GetAgentCard(ctx context.Context) (*domain.AgentCard, error) {
	return &domain.AgentCard{
		Name:         "agent",
		Description:  "test agent",
		URL:          "http://localhost/a2a",
		Capabilities: &domain.AgentCapabilities{Streaming: c.streaming},
	}, nil
}

func (c *fakeTaskClient) SendMessage(ctx context.Context, text, contextID string) (*domain.TaskReply, error) {
	if c.onSend != nil {
		c.onSend()
	}
	return completed("task-1", contextID, text), nil
}

func (c *fakeTaskClient) GetTask(ctx context.Context, id string) (*domain.TaskReply, error) {
	return completed(id, "", "Test message"), nil
}

func (c *fakeTaskClient) CancelTask(ctx context.Context, id string) (*domain.TaskReply, error) {
	reply := completed(id, "", "Test message")
	reply.Task.Status = domain.TaskCanceled
	return reply, nil
}

func (c *fakeTaskClient) StreamMessage(ctx context.Context, text string) (*domain.StreamReply, error) {
	return &domain.StreamReply{
		ContentType: "text/event-stream",
		Events:      []domain.StreamEvent{{Data: `{"text":"[MOCK] ` + text + `"}`}},
	}, nil
}

func (c *fakeTaskClient) Raw(ctx context.Context, body any) (*jsonrpc.Response, error) {
	req := body.(jsonrpc.Request)
	if req.JSONRPC != jsonrpc.Version {
		return &jsonrpc.Response{JSONRPC: "2.0", Error: &jsonrpc.Error{Code: jsonrpc.CodeInvalidRequest, Message: "Invalid Request: jsonrpc must be 2.0"}}, nil
	}
	return &jsonrpc.Response{JSONRPC: "2.0", Error: &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "Method not found"}}, nil
}

type fakeTaskFactory struct {
	supervisor *fakeSupervisor
	onSend     func()
}

func (f *fakeTaskFactory) NewAgentTaskClient(baseURL string) AgentTaskClient {
	return &fakeTaskClient{
		streaming: strings.HasSuffix(f.supervisor.dirFor(baseURL), "-a2a-streaming"),
		onSend:    f.onSend,
	}
}

type fakeToolSession struct{ closed *int }

func (s *fakeToolSession) ListTools(ctx context.Context) ([]domain.Tool, error) {
	return []domain.Tool{{Name: "chat"}, {Name: "echo"}, {Name: "get_time"}}, nil
}

func (s *fakeToolSession) CallTool(ctx context.Context, name string, args map[string]any) (*domain.ToolResult, error) {
	switch name {
	case "echo":
		return &domain.ToolResult{Texts: []string{fmt.Sprintf(`{"echoed":%q}`, args["text"])}}, nil
	case "get_time":
		return &domain.ToolResult{Texts: []string{`{"time":"2025-01-02T03:04:05.678Z"}`}}, nil
	case "chat":
		return &domain.ToolResult{Texts: []string{fmt.Sprintf(`{"response":"[MOCK] %s"}`, args["message"])}}, nil
	}
	return nil, fmt.Errorf("unknown tool %s", name)
}

func (s *fakeToolSession) Close() error {
	*s.closed++
	return nil
}

type fakeConnector struct{ closed int }

func (c *fakeConnector) Connect(ctx context.Context, dir string) (ToolSession, error) {
	return &fakeToolSession{closed: &c.closed}, nil
}

type fakePaymentClient struct{}

func (fakePaymentClient) Probe(ctx context.Context, body any) (int, error) {
	return http.StatusPaymentRequired, nil
}

func (fakePaymentClient) PaidRequest(ctx context.Context, body any) (*domain.PaidReply, error) {
	return &domain.PaidReply{StatusCode: http.StatusOK, Reply: completed("paid", "", "Hello with payment!"), Settlement: "ok"}, nil
}

type fakePaymentFactory struct{ networks []domain.CAIP2 }

func (f *fakePaymentFactory) NewPaymentClient(baseURL string, network domain.CAIP2, payer *ecdsa.PrivateKey) PaymentClient {
	f.networks = append(f.networks, network)
	return fakePaymentClient{}
}

// recordingProgress keeps every event for assertions.
type recordingProgress struct {
	events []ProgressEvent
	errors []string
}

func (p *recordingProgress) OnProgress(ctx context.Context, e ProgressEvent) {
	p.events = append(p.events, e)
}

func (p *recordingProgress) Info(string)      {}
func (p *recordingProgress) Error(msg string) { p.errors = append(p.errors, msg) }

func (p *recordingProgress) results() []domain.CheckResult {
	var out []domain.CheckResult
	for _, e := range p.events {
		if e.Stage == StageResult {
			out = append(out, e.Metadata.(domain.CheckResult))
		}
	}
	return out
}
