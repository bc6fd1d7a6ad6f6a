package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
)

// Progress stages reported by RunConformance.
const (
	StageScenario  = "scenario"
	StageSubSuite  = "suite"
	StageProvision = "provision"
	StageCheck     = "check"
	StageResult    = "result"
)

// RunConformanceParams contains parameters for a conformance run
type RunConformanceParams struct {
	Chains []domain.ChainKey
	// Suites restricts the run to sub-suites whose name contains one of
	// these substrings (case-insensitive). Empty runs everything.
	Suites []string
}

// RunConformanceResult contains the result of a conformance run
type RunConformanceResult struct {
	Report *domain.RunReport
}

// RunConformance drives every sub-suite of every requested chain, one at a
// time, and collects the results.
type RunConformance struct {
	config     *config.RuntimeConfig
	catalog    ChainCatalog
	ports      PortAllocator
	supervisor ProcessSupervisor
	generator  ScaffoldGenerator
	installer  DependencyInstaller
	mock       MockModeInjector
	env        EnvWriter
	files      ProjectFiles
	tasks      AgentTaskClientFactory
	tools      ToolConnector
	payments   PaymentClientFactory
	progress   ProgressSink
	log        *slog.Logger
}

// NewRunConformance creates a new RunConformance use case
func NewRunConformance(
	cfg *config.RuntimeConfig,
	catalog ChainCatalog,
	ports PortAllocator,
	supervisor ProcessSupervisor,
	generator ScaffoldGenerator,
	installer DependencyInstaller,
	mock MockModeInjector,
	env EnvWriter,
	files ProjectFiles,
	tasks AgentTaskClientFactory,
	tools ToolConnector,
	payments PaymentClientFactory,
	progress ProgressSink,
	log *slog.Logger,
) *RunConformance {
	return &RunConformance{
		config:     cfg,
		catalog:    catalog,
		ports:      ports,
		supervisor: supervisor,
		generator:  generator,
		installer:  installer,
		mock:       mock,
		env:        env,
		files:      files,
		tasks:      tasks,
		tools:      tools,
		payments:   payments,
		progress:   progress,
		log:        log,
	}
}

// Run executes the conformance suites for the requested chains
func (uc *RunConformance) Run(ctx context.Context, params RunConformanceParams) (*RunConformanceResult, error) {
	if len(params.Chains) == 0 {
		return nil, fmt.Errorf("no chains selected")
	}

	// Resolve every chain before doing any work
	chains := make([]domain.Chain, 0, len(params.Chains))
	for _, key := range lo.Uniq(params.Chains) {
		chain, err := uc.catalog.Get(key)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	uc.ports.Reset()
	uc.log.Debug("starting conformance run", "run", report.RunID, "chains", len(chains))

	opts := SuiteOptions{PayerAvailable: uc.config.PayerKey != nil}
	for i, chain := range chains {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(report.StartedAt)
			return &RunConformanceResult{Report: report}, err
		}

		plan := ComposeSuite(chain.Scenario(), opts)
		plan.SubSuites = FilterSubSuites(plan.SubSuites, params.Suites)

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageScenario,
			Current:  i + 1,
			Total:    len(chains),
			Message:  chain.Name,
			Metadata: plan.Scenario,
		})

		scenario := domain.ScenarioReport{Scenario: plan.Scenario}
		for _, sub := range plan.SubSuites {
			uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageSubSuite, Message: sub.Name, Total: len(sub.Checks)})
			scenario.Results = append(scenario.Results, uc.runSubSuite(ctx, chain, sub)...)
		}
		report.Scenarios = append(report.Scenarios, scenario)
	}

	report.Duration = time.Since(report.StartedAt)
	return &RunConformanceResult{Report: report}, nil
}

// FilterSubSuites keeps sub-suites whose name contains any of patterns.
func FilterSubSuites(subs []SubSuite, patterns []string) []SubSuite {
	if len(patterns) == 0 {
		return subs
	}
	return lo.Filter(subs, func(s SubSuite, _ int) bool {
		name := strings.ToLower(s.Name)
		return lo.SomeBy(patterns, func(p string) bool {
			return strings.Contains(name, strings.ToLower(strings.TrimSpace(p)))
		})
	})
}

func (uc *RunConformance) runSubSuite(ctx context.Context, chain domain.Chain, sub SubSuite) []domain.CheckResult {
	if sub.SkipReason != "" {
		uc.progress.Info(fmt.Sprintf("Skipping %s: %s", sub.Name, sub.SkipReason))
		return uc.settleAll(ctx, sub, domain.Skip(sub.SkipReason))
	}

	project, port, err := uc.provision(ctx, sub)
	if err != nil {
		return uc.settleAll(ctx, sub, err)
	}

	env := &CheckEnv{Chain: chain, Project: project, Files: uc.files}

	switch sub.Server {
	case ServerHTTP:
		results, err := uc.withProcess(ctx, project.Dir, sub.Entrypoint, port, func(mp ManagedProcess) []domain.CheckResult {
			env.Process = mp
			env.BaseURL = fmt.Sprintf("http://localhost:%d", mp.Port())
			env.Tasks = uc.tasks.NewAgentTaskClient(env.BaseURL)
			env.Payments = uc.payments.NewPaymentClient(env.BaseURL, domain.CAIP2(chain.X402Network), uc.config.PayerKey)
			return uc.runChecks(ctx, sub, env)
		})
		if err != nil {
			return uc.settleAll(ctx, sub, err)
		}
		return results

	case ServerStdio:
		session, err := uc.tools.Connect(ctx, project.Dir)
		if err != nil {
			return uc.settleAll(ctx, sub, &domain.ProvisioningError{Step: "connect", Cause: err})
		}
		defer func() {
			if err := session.Close(); err != nil {
				uc.log.Debug("closing tool session", "error", err)
			}
		}()
		env.Tools = session
		return uc.runChecks(ctx, sub, env)

	default:
		return uc.runChecks(ctx, sub, env)
	}
}

// provision runs the setup steps in order. The returned port is zero for
// generate-only sub-suites.
func (uc *RunConformance) provision(ctx context.Context, sub SubSuite) (*domain.Project, int, error) {
	step := func(name string) {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageProvision, Message: fmt.Sprintf("%s: %s", sub.Name, name), Spinner: true})
	}

	step("generating project")
	project, err := uc.generator.Generate(ctx, sub.Project)
	if err != nil {
		return nil, 0, &domain.ProvisioningError{Step: "generate", Cause: err}
	}
	if sub.Setup == SetupGenerate {
		return project, 0, nil
	}

	step("installing dependencies")
	if err := uc.installer.Install(ctx, project.Dir); err != nil {
		return nil, 0, &domain.ProvisioningError{Step: "install", Cause: err}
	}

	step("enabling mock mode")
	if err := uc.mock.Enable(ctx, project.Dir); err != nil {
		return nil, 0, &domain.ProvisioningError{Step: "mock mode", Cause: err}
	}

	port := uc.ports.NextPort()
	step("writing environment")
	if err := uc.env.WriteEnv(project.Dir, port); err != nil {
		return nil, 0, &domain.ProvisioningError{Step: "env", Cause: err}
	}
	return project, port, nil
}

// withProcess starts a server, hands it to fn and always stops it
// afterwards, even if fn panics.
func (uc *RunConformance) withProcess(
	ctx context.Context,
	projectDir, entrypoint string,
	port int,
	fn func(mp ManagedProcess) []domain.CheckResult,
) ([]domain.CheckResult, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageProvision,
		Message: fmt.Sprintf("starting %s on port %d", entrypoint, port),
		Spinner: true,
	})

	mp, err := uc.supervisor.Start(ctx, projectDir, entrypoint, port)
	if err != nil {
		if mp != nil {
			if stopErr := uc.supervisor.Stop(mp); stopErr != nil {
				uc.log.Debug("stopping failed server", "error", stopErr)
			}
		}
		return nil, err
	}
	defer func() {
		if stopErr := uc.supervisor.Stop(mp); stopErr != nil {
			uc.log.Warn("failed to stop server", "entrypoint", entrypoint, "port", port, "error", stopErr)
		}
	}()

	return fn(mp), nil
}

func (uc *RunConformance) runChecks(ctx context.Context, sub SubSuite, env *CheckEnv) []domain.CheckResult {
	results := make([]domain.CheckResult, 0, len(sub.Checks))
	for i, check := range sub.Checks {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageCheck,
			Current: i + 1,
			Total:   len(sub.Checks),
			Message: check.Name,
			Spinner: true,
		})

		checkEnv := env
		if check.Project != nil {
			project, err := uc.generateFor(ctx, sub, check)
			if err != nil {
				result := settle(sub.Name, check.Name, err, 0)
				uc.report(ctx, result)
				results = append(results, result)
				continue
			}
			own := *env
			own.Project = project
			checkEnv = &own
		}

		start := time.Now()
		err := runCheck(ctx, check, checkEnv)
		result := settle(sub.Name, check.Name, err, time.Since(start))
		uc.report(ctx, result)
		results = append(results, result)
	}
	return results
}

// generateFor scaffolds the project a single check inspects.
func (uc *RunConformance) generateFor(ctx context.Context, sub SubSuite, check Check) (*domain.Project, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageProvision,
		Message: fmt.Sprintf("%s: generating %s", sub.Name, check.Project.Name),
		Spinner: true,
	})
	project, err := uc.generator.Generate(ctx, *check.Project)
	if err != nil {
		return nil, &domain.ProvisioningError{Step: "generate", Cause: err}
	}
	return project, nil
}

// runCheck converts a panicking check into a failure.
func runCheck(ctx context.Context, check Check, env *CheckEnv) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return check.Run(ctx, env)
}

// settleAll gives every check of sub the same outcome.
func (uc *RunConformance) settleAll(ctx context.Context, sub SubSuite, err error) []domain.CheckResult {
	if !errors.Is(err, domain.ErrSkipped) {
		uc.progress.Error(fmt.Sprintf("%s: %v", sub.Name, err))
	}
	return lo.Map(sub.Checks, func(c Check, _ int) domain.CheckResult {
		result := settle(sub.Name, c.Name, err, 0)
		uc.report(ctx, result)
		return result
	})
}

func (uc *RunConformance) report(ctx context.Context, result domain.CheckResult) {
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageResult, Message: result.Check, Metadata: result})
}

func settle(suite, check string, err error, elapsed time.Duration) domain.CheckResult {
	result := domain.CheckResult{Suite: suite, Check: check, Status: domain.CheckPassed, Duration: elapsed}
	switch {
	case err == nil:
	case domain.IsSkip(err):
		result.Status = domain.CheckSkipped
		result.Error = err.Error()
	default:
		result.Status = domain.CheckFailed
		result.Error = err.Error()
	}
	return result
}
