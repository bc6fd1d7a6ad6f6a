package usecase

import (
	"github.com/mahzoun/create-8004-agent/internal/domain"
)

// registrationChecks inspect register.ts; the chain and trust checks run
// against a2a-only projects of their own.
func registrationChecks(chainConfig, trust domain.ProjectSpec) []Check {
	return []Check{
		{Name: "generates registration script", Run: allOf(
			filesExist(domain.RegisterFile),
			fileContains(domain.RegisterFile, "agent0-sdk", "registerIPFS", "chainId: "),
		)},
		{Name: "initializes SDK with chain", Run: fileContains(domain.RegisterFile, "SDK", "chainId"), Project: &chainConfig},
		{Name: "configures trust models", Run: fileContains(domain.RegisterFile, "setTrust"), Project: &trust},
	}
}

func readmeChecks(scenario domain.ChainScenario, chainName domain.ProjectSpec) []Check {
	return []Check{
		{Name: "generates comprehensive README", Run: fileContains(domain.ReadmeFile,
			"Quick Start",
			"Configure environment",
			"PINATA_JWT",
			"OPENAI_API_KEY",
			"Fund your wallet",
			"npm run register",
			"OASF",
		)},
		{Name: "names the chain", Run: fileContains(domain.ReadmeFile, scenario.ShortName()), Project: &chainName},
	}
}
