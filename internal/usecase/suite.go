package usecase

import (
	"context"
	"fmt"

	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// Sub-suite names, in execution order.
const (
	SuiteA2A          = "A2A Server (No Streaming)"
	SuiteA2AStreaming = "A2A Server (With Streaming)"
	SuiteMCP          = "MCP Server"
	SuiteRegistration = "Registration File"
	SuiteX402         = "x402 Payments"
	SuiteX402Paid     = "x402 Paid Request"
	SuiteReadme       = "README Generation"
)

// SetupLevel is how far a sub-suite's project is provisioned before checks.
type SetupLevel int

const (
	// SetupGenerate only scaffolds the project.
	SetupGenerate SetupLevel = iota
	// SetupFull scaffolds, installs, enables mock mode and writes .env.
	SetupFull
)

// ServerKind is what a sub-suite's checks talk to.
type ServerKind int

const (
	ServerNone ServerKind = iota
	// ServerHTTP is a long-lived process listening on the allocated port.
	ServerHTTP
	// ServerStdio is a tool server spoken to over its standard streams.
	ServerStdio
)

// CheckEnv is what a check can observe about its sub-suite.
type CheckEnv struct {
	Chain   domain.Chain
	Project *domain.Project
	Files   ProjectFiles

	// Set for ServerHTTP sub-suites
	Process  ManagedProcess
	BaseURL  string
	Tasks    AgentTaskClient
	Payments PaymentClient

	// Set for ServerStdio sub-suites
	Tools ToolSession
}

// CheckFunc runs one check. Returning an error wrapping domain.ErrSkipped
// reports the check as skipped.
type CheckFunc func(ctx context.Context, env *CheckEnv) error

// Check is a named assertion.
type Check struct {
	Name string
	Run  CheckFunc
	// Project, when set, is generated just for this check and replaces the
	// sub-suite's project in its CheckEnv.
	Project *domain.ProjectSpec
}

// SubSuite is a group of checks sharing one generated project and, if any,
// one server process.
type SubSuite struct {
	Name       string
	Project    domain.ProjectSpec
	Setup      SetupLevel
	Server     ServerKind
	Entrypoint string
	// SkipReason, when set, skips every check without provisioning.
	SkipReason string
	Checks     []Check
}

// Plan is the ordered set of sub-suites for one chain.
type Plan struct {
	Scenario  domain.ChainScenario
	SubSuites []SubSuite
}

// SuiteOptions are run-wide inputs that change the plan.
type SuiteOptions struct {
	// PayerAvailable is true when a funded payer key is configured.
	PayerAvailable bool
}

// ComposeSuite builds the sub-suites that apply to a chain. Payment
// sub-suites are included only where the chain supports payments, and
// the paid round trip only on test networks.
func ComposeSuite(scenario domain.ChainScenario, opts SuiteOptions) Plan {
	key := string(scenario.ChainKey)
	project := func(suffix string, streaming bool, features ...domain.Feature) domain.ProjectSpec {
		return domain.ProjectSpec{
			Name:      fmt.Sprintf("%s-%s", key, suffix),
			Chain:     scenario.ChainKey,
			Features:  features,
			Streaming: streaming,
		}
	}

	plan := Plan{Scenario: scenario}

	plan.SubSuites = append(plan.SubSuites,
		SubSuite{
			Name:       SuiteA2A,
			Project:    project("a2a-no-stream", false, domain.FeatureA2A),
			Setup:      SetupFull,
			Server:     ServerHTTP,
			Entrypoint: domain.A2AEntrypoint,
			Checks:     a2aChecks(false),
		},
		SubSuite{
			Name:       SuiteA2AStreaming,
			Project:    project("a2a-streaming", true, domain.FeatureA2A),
			Setup:      SetupFull,
			Server:     ServerHTTP,
			Entrypoint: domain.A2AEntrypoint,
			Checks:     a2aChecks(true),
		},
		SubSuite{
			Name:       SuiteMCP,
			Project:    project("mcp", false, domain.FeatureMCP),
			Setup:      SetupFull,
			Server:     ServerStdio,
			Entrypoint: domain.MCPEntrypoint,
			Checks:     mcpChecks(),
		},
		SubSuite{
			Name:    SuiteRegistration,
			Project: project("registration", false, domain.FeatureA2A, domain.FeatureMCP),
			Setup:   SetupGenerate,
			Checks:  registrationChecks(project("chain-config", false, domain.FeatureA2A), project("trust", false, domain.FeatureA2A)),
		},
	)

	if scenario.PaymentsSupported {
		plan.SubSuites = append(plan.SubSuites, SubSuite{
			Name:       SuiteX402,
			Project:    project("x402", false, domain.FeatureA2A, domain.FeatureX402),
			Setup:      SetupFull,
			Server:     ServerHTTP,
			Entrypoint: domain.A2AEntrypoint,
			Checks:     x402Checks(),
		})
	}

	if scenario.PaymentsSupported && scenario.IsTestNetwork {
		paid := SubSuite{
			Name:       SuiteX402Paid,
			Project:    project("x402-paid", false, domain.FeatureA2A, domain.FeatureX402),
			Setup:      SetupFull,
			Server:     ServerHTTP,
			Entrypoint: domain.A2AEntrypoint,
			Checks:     x402PaidChecks(),
		}
		if !opts.PayerAvailable {
			paid.SkipReason = "TEST_PAYER_PRIVATE_KEY not set"
		}
		plan.SubSuites = append(plan.SubSuites, paid)
	}

	plan.SubSuites = append(plan.SubSuites, SubSuite{
		Name:    SuiteReadme,
		Project: project("readme", false, domain.FeatureA2A, domain.FeatureMCP),
		Setup:   SetupGenerate,
		Checks:  readmeChecks(scenario, project("readme-chain", false, domain.FeatureA2A)),
	})

	return plan
}

// CheckCount returns the number of checks in the plan.
func (p Plan) CheckCount() int {
	n := 0
	for _, s := range p.SubSuites {
		n += len(s.Checks)
	}
	return n
}
