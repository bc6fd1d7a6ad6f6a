package usecase

import (
	"context"

	"github.com/samber/lo"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/domain/config"
)

// ListChainsParams contains parameters for listing chains
type ListChainsParams struct {
	// PaymentsOnly keeps chains where x402 checks apply
	PaymentsOnly bool
}

// ListChainsResult contains the result of listing chains
type ListChainsResult struct {
	Chains []ChainSummary
}

// ChainSummary is a catalog entry with the sub-suites a run would execute.
type ChainSummary struct {
	Chain     domain.Chain `json:"chain" yaml:"chain"`
	SubSuites []string     `json:"subSuites" yaml:"subSuites"`
}

// ListChains is a use case for listing the chains a run can target
type ListChains struct {
	catalog ChainCatalog
	config  *config.RuntimeConfig
}

// NewListChains creates a new ListChains use case
func NewListChains(catalog ChainCatalog, cfg *config.RuntimeConfig) *ListChains {
	return &ListChains{catalog: catalog, config: cfg}
}

// Run executes the use case
func (uc *ListChains) Run(ctx context.Context, params ListChainsParams) (*ListChainsResult, error) {
	opts := SuiteOptions{PayerAvailable: uc.config.PayerKey != nil}

	chains := uc.catalog.All()
	if params.PaymentsOnly {
		chains = lo.Filter(chains, func(c domain.Chain, _ int) bool { return c.PaymentsSupported })
	}

	summaries := lo.Map(chains, func(c domain.Chain, _ int) ChainSummary {
		plan := ComposeSuite(c.Scenario(), opts)
		return ChainSummary{
			Chain:     c,
			SubSuites: lo.Map(plan.SubSuites, func(s SubSuite, _ int) string { return s.Name }),
		}
	})

	return &ListChainsResult{Chains: summaries}, nil
}
