package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunReport_Summary(t *testing.T) {
	report := &RunReport{Scenarios: []ScenarioReport{
		{Results: []CheckResult{{Status: CheckPassed}, {Status: CheckPassed}, {Status: CheckSkipped}}},
		{Results: []CheckResult{{Status: CheckFailed}}},
	}}

	summary := report.Summary()
	assert.Equal(t, Summary{Passed: 2, Failed: 1, Skipped: 1}, summary)
	assert.Equal(t, 4, summary.Total())
	assert.True(t, report.Failed())

	assert.False(t, (&RunReport{}).Failed())
}

func TestErrors(t *testing.T) {
	skip := Skip("no payer")
	assert.True(t, IsSkip(skip))
	assert.Equal(t, "skipped: no payer", skip.Error())
	assert.False(t, IsSkip(errors.New("skipped")))

	cause := errors.New("connection refused")
	startup := &StartupError{Entrypoint: A2AEntrypoint, Port: 30001, Elapsed: 1500 * time.Millisecond, Output: "boom\n", Cause: cause}
	assert.ErrorIs(t, startup, cause)
	assert.Equal(t, "a2a-server.ts did not accept connections on port 30001 after 1.5s: connection refused\n--- output ---\nboom", startup.Error())

	provisioning := &ProvisioningError{Step: "install", Cause: cause}
	assert.ErrorIs(t, provisioning, cause)
	assert.Contains(t, provisioning.Error(), "install")

	unknown := UnknownChainError{Key: "bse", Suggestions: []string{"base-sepolia", "base-mainnet"}}
	assert.ErrorIs(t, unknown, ErrUnknownChain)
	assert.Equal(t, `unknown chain "bse" (did you mean base-sepolia, base-mainnet?)`, unknown.Error())

	assert.Equal(t, "status: expected 402, got 200", Violation("status", 402, 200).Error())
}

func TestPaymentChallenge_Select(t *testing.T) {
	challenge := &PaymentChallenge{Accepts: []PaymentRequirement{
		{Scheme: "exact", Network: "eip155:8453", MaxAmountRequired: "1000"},
		{Scheme: "exact", Network: "eip155:84532", Amount: "2000"},
	}}

	req, ok := challenge.Select("exact", "eip155:84532")
	assert.True(t, ok)
	assert.Equal(t, "2000", req.Value())

	req, ok = challenge.Select("exact", "eip155:8453")
	assert.True(t, ok)
	assert.Equal(t, "1000", req.Value())

	_, ok = challenge.Select("upto", "eip155:8453")
	assert.False(t, ok)
}

func TestProjectSpec_HasFeature(t *testing.T) {
	spec := ProjectSpec{Features: []Feature{FeatureA2A, FeatureX402}}
	assert.True(t, spec.HasFeature(FeatureX402))
	assert.False(t, spec.HasFeature(FeatureMCP))
}

func TestToolResult_DecodeFirst(t *testing.T) {
	var out struct {
		Echoed string `json:"echoed"`
	}
	assert.NoError(t, (&ToolResult{Texts: []string{`{"echoed":"hi"}`}}).DecodeFirst(&out))
	assert.Equal(t, "hi", out.Echoed)

	assert.Error(t, (&ToolResult{}).DecodeFirst(&out))
	assert.Error(t, (&ToolResult{Texts: []string{"plain"}}).DecodeFirst(&out))
}
