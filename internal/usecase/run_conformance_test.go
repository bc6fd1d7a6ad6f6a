package usecase

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
)

var (
	baseSepolia = domain.Chain{
		Key:               "base-sepolia",
		Name:              "Base Sepolia",
		ChainID:           84532,
		X402Network:       "eip155:84532",
		PaymentsSupported: true,
		IsTestNetwork:     true,
	}
	monadTestnet = domain.Chain{
		Key:           "monad-testnet",
		Name:          "Monad Testnet",
		ChainID:       10143,
		IsTestNetwork: true,
	}
)

type harness struct {
	cfg        *config.RuntimeConfig
	ports      *fakePorts
	supervisor *fakeSupervisor
	generator  *fakeGenerator
	installer  *fakeInstaller
	mock       *fakeMock
	env        *fakeEnv
	tasks      *fakeTaskFactory
	tools      *fakeConnector
	payments   *fakePaymentFactory
	progress   *recordingProgress
}

func newHarness(t *testing.T, withPayer bool) *harness {
	t.Helper()

	cfg := &config.RuntimeConfig{WorkDir: t.TempDir()}
	if withPayer {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		cfg.PayerKey = key
	}

	supervisor := newFakeSupervisor()
	return &harness{
		cfg:        cfg,
		ports:      &fakePorts{},
		supervisor: supervisor,
		generator:  &fakeGenerator{root: cfg.WorkDir},
		installer:  &fakeInstaller{},
		mock:       &fakeMock{},
		env:        &fakeEnv{},
		tasks:      &fakeTaskFactory{supervisor: supervisor},
		tools:      &fakeConnector{},
		payments:   &fakePaymentFactory{},
		progress:   &recordingProgress{},
	}
}

func (h *harness) run(t *testing.T, params RunConformanceParams) (*RunConformanceResult, error) {
	t.Helper()
	uc := NewRunConformance(
		h.cfg,
		newFakeCatalog(baseSepolia, monadTestnet),
		h.ports,
		h.supervisor,
		h.generator,
		h.installer,
		h.mock,
		h.env,
		&fakeFiles{content: passingFiles},
		h.tasks,
		h.tools,
		h.payments,
		h.progress,
		slog.New(slog.DiscardHandler),
	)
	return uc.Run(context.Background(), params)
}

func resultsFor(report *domain.RunReport, suite string) []domain.CheckResult {
	var out []domain.CheckResult
	for _, sc := range report.Scenarios {
		out = append(out, lo.Filter(sc.Results, func(r domain.CheckResult, _ int) bool { return r.Suite == suite })...)
	}
	return out
}

func statuses(results []domain.CheckResult) []domain.CheckStatus {
	return lo.Uniq(lo.Map(results, func(r domain.CheckResult, _ int) domain.CheckStatus { return r.Status }))
}

func TestRunConformance_AllPass(t *testing.T) {
	h := newHarness(t, true)

	result, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia", "monad-testnet"}})
	require.NoError(t, err)

	report := result.Report
	require.Len(t, report.Scenarios, 2)
	assert.NotEmpty(t, report.RunID)

	for _, sc := range report.Scenarios {
		for _, r := range sc.Results {
			assert.Equal(t, domain.CheckPassed, r.Status, "%s / %s: %s", r.Suite, r.Check, r.Error)
		}
	}

	assert.Len(t, report.Scenarios[0].Results, 28)
	assert.Len(t, report.Scenarios[1].Results, 22)
	assert.Equal(t, domain.Summary{Passed: 50}, report.Summary())
	assert.False(t, report.Failed())

	// Every result was also streamed to the progress sink
	assert.Len(t, h.progress.results(), 50)
	assert.Empty(t, h.progress.errors)

	assert.Equal(t, 4, lo.Count(h.payments.networks, "eip155:84532"))
	assert.Equal(t, 2, h.tools.closed)
}

func TestRunConformance_ProcessLifecycle(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia", "monad-testnet"}})
	require.NoError(t, err)

	// base-sepolia: no-stream, streaming, x402, paid; monad: no-stream, streaming
	assert.Len(t, h.supervisor.started, 6)
	assert.Equal(t, 6, h.supervisor.stopped)
	assert.Empty(t, h.supervisor.live)
	assert.NoError(t, h.supervisor.reuse)

	ports := lo.Values(h.env.ports)
	assert.Len(t, ports, 8)
	assert.Len(t, lo.Uniq(ports), 8, "every provisioned project gets its own port")
	assert.Equal(t, 1, h.ports.resets)
}

func TestRunConformance_SkipsPaidWithoutPayer(t *testing.T) {
	h := newHarness(t, false)

	result, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia"}})
	require.NoError(t, err)

	paid := resultsFor(result.Report, SuiteX402Paid)
	require.Len(t, paid, 1)
	assert.Equal(t, domain.CheckSkipped, paid[0].Status)
	assert.Contains(t, paid[0].Error, "TEST_PAYER_PRIVATE_KEY")

	assert.NotContains(t, h.generator.generated, "base-sepolia-x402-paid")
	assert.Len(t, h.supervisor.started, 3)
	assert.Equal(t, domain.Summary{Passed: 27, Skipped: 1}, result.Report.Summary())
	assert.False(t, result.Report.Failed())
}

func TestRunConformance_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(h *harness)
		suite     string
		wantCount int
		wantErr   string
	}{
		{
			name: "server never becomes ready",
			setup: func(h *harness) {
				h.supervisor.startErr = func(dir string) error {
					if strings.HasSuffix(dir, "-a2a-no-stream") {
						return domain.ErrProcessExited
					}
					return nil
				}
			},
			suite:     SuiteA2A,
			wantCount: 8,
			wantErr:   "did not accept connections",
		},
		{
			name: "install fails",
			setup: func(h *harness) {
				h.installer.err = func(dir string) error {
					if filepath.Base(dir) == "base-sepolia-mcp" {
						return errors.New("npm ERR! network")
					}
					return nil
				}
			},
			suite:     SuiteMCP,
			wantCount: 5,
			wantErr:   "provisioning failed at install",
		},
		{
			name: "generator fails",
			setup: func(h *harness) {
				h.generator.err = func(spec domain.ProjectSpec) error {
					if spec.Name == "base-sepolia-registration" {
						return errors.New("unknown chain")
					}
					return nil
				}
			},
			suite:     SuiteRegistration,
			wantCount: 3,
			wantErr:   "provisioning failed at generate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			tt.setup(h)

			result, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia"}})
			require.NoError(t, err)

			failed := resultsFor(result.Report, tt.suite)
			require.Len(t, failed, tt.wantCount)
			assert.Equal(t, []domain.CheckStatus{domain.CheckFailed}, statuses(failed))
			assert.Contains(t, failed[0].Error, tt.wantErr)

			// The rest of the run is unaffected
			summary := result.Report.Summary()
			assert.Equal(t, tt.wantCount, summary.Failed)
			assert.Equal(t, 28-tt.wantCount, summary.Passed)
			assert.True(t, result.Report.Failed())
			assert.NotEmpty(t, h.progress.errors)

			assert.Equal(t, len(h.supervisor.started), h.supervisor.stopped)
			assert.Empty(t, h.supervisor.live)
		})
	}
}

func TestRunConformance_CheckProjects(t *testing.T) {
	h := newHarness(t, true)
	h.generator.err = func(spec domain.ProjectSpec) error {
		if spec.Name == "base-sepolia-trust" {
			return errors.New("template missing")
		}
		return nil
	}

	result, err := h.run(t, RunConformanceParams{
		Chains: []domain.ChainKey{"base-sepolia"},
		Suites: []string{"registration"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"base-sepolia-registration", "base-sepolia-chain-config"}, h.generator.generated)

	results := resultsFor(result.Report, SuiteRegistration)
	require.Len(t, results, 3)
	assert.Equal(t, domain.CheckPassed, results[0].Status)
	assert.Equal(t, domain.CheckPassed, results[1].Status)
	assert.Equal(t, domain.CheckFailed, results[2].Status)
	assert.Equal(t, "configures trust models", results[2].Check)
	assert.Contains(t, results[2].Error, "provisioning failed at generate")
}

func TestRunConformance_StopsServerWhenCheckPanics(t *testing.T) {
	h := newHarness(t, true)
	h.tasks.onSend = func() { panic("boom") }

	result, err := h.run(t, RunConformanceParams{
		Chains: []domain.ChainKey{"base-sepolia"},
		Suites: []string{"no streaming"},
	})
	require.NoError(t, err)

	results := resultsFor(result.Report, SuiteA2A)
	require.Len(t, results, 8)

	panicked := lo.Filter(results, func(r domain.CheckResult, _ int) bool {
		return strings.Contains(r.Error, "check panicked: boom")
	})
	assert.Len(t, panicked, 4, "send, context, get and cancel all send a message")

	require.Len(t, h.supervisor.started, 1)
	assert.Equal(t, 1, h.supervisor.stopped)
	assert.Empty(t, h.supervisor.live)
}

func TestRunConformance_SuiteFilter(t *testing.T) {
	h := newHarness(t, true)

	result, err := h.run(t, RunConformanceParams{
		Chains: []domain.ChainKey{"base-sepolia"},
		Suites: []string{"MCP", " readme "},
	})
	require.NoError(t, err)

	suites := lo.Uniq(lo.Map(result.Report.Scenarios[0].Results, func(r domain.CheckResult, _ int) string { return r.Suite }))
	assert.Equal(t, []string{SuiteMCP, SuiteReadme}, suites)
	assert.Equal(t, []string{"base-sepolia-mcp", "base-sepolia-readme", "base-sepolia-readme-chain"}, h.generator.generated)
	assert.Empty(t, h.supervisor.started)
}

func TestRunConformance_DeduplicatesChains(t *testing.T) {
	h := newHarness(t, true)

	result, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"monad-testnet", "monad-testnet"}})
	require.NoError(t, err)
	assert.Len(t, result.Report.Scenarios, 1)
}

func TestRunConformance_UnknownChain(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run(t, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia", "nope"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownChain)

	// Nothing is provisioned when any chain is unknown
	assert.Empty(t, h.generator.generated)
	assert.Zero(t, h.ports.resets)
}

func TestRunConformance_NoChains(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.run(t, RunConformanceParams{})
	assert.Error(t, err)
}

func TestRunConformance_Canceled(t *testing.T) {
	h := newHarness(t, true)
	uc := NewRunConformance(h.cfg, newFakeCatalog(baseSepolia), h.ports, h.supervisor, h.generator, h.installer,
		h.mock, h.env, &fakeFiles{content: passingFiles}, h.tasks, h.tools, h.payments, NopProgress{},
		slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uc.Run(ctx, RunConformanceParams{Chains: []domain.ChainKey{"base-sepolia"}})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Report.Scenarios)
}

func TestFilterSubSuites(t *testing.T) {
	plan := ComposeSuite(baseSepolia.Scenario(), SuiteOptions{PayerAvailable: true})
	names := func(subs []SubSuite) []string {
		return lo.Map(subs, func(s SubSuite, _ int) string { return s.Name })
	}

	assert.Len(t, FilterSubSuites(plan.SubSuites, nil), 7)
	assert.Equal(t, []string{SuiteX402, SuiteX402Paid}, names(FilterSubSuites(plan.SubSuites, []string{"x402"})))
	assert.Equal(t, []string{SuiteA2A, SuiteA2AStreaming}, names(FilterSubSuites(plan.SubSuites, []string{"a2a"})))
	assert.Empty(t, FilterSubSuites(plan.SubSuites, []string{"nothing"}))
}
