package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mahzoun/create-8004-agent/internal/domain"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

func sampleReport() *domain.RunReport {
	return &domain.RunReport{
		RunID:     "run-1",
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Scenarios: []domain.ScenarioReport{{
			Scenario: domain.ChainScenario{ChainKey: "base-sepolia", ChainName: "Base Sepolia", PaymentsSupported: true, IsTestNetwork: true},
			Results: []domain.CheckResult{
				{Suite: usecase.SuiteMCP, Check: "lists available tools", Status: domain.CheckPassed, Duration: 20 * time.Millisecond},
				{Suite: usecase.SuiteMCP, Check: "executes echo tool", Status: domain.CheckFailed, Error: "echoed: expected a, got b"},
				{Suite: usecase.SuiteX402Paid, Check: "returns response when payment is valid", Status: domain.CheckSkipped, Error: "skipped: no key"},
			},
		}},
	}
}

func noColor(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
}

func TestResultsRenderer(t *testing.T) {
	noColor(t)
	var out bytes.Buffer

	require.NoError(t, NewResultsRenderer(&out).Render(sampleReport()))

	s := out.String()
	assert.Contains(t, s, "Base Sepolia (base-sepolia)")
	assert.Contains(t, s, "✓ Passed")
	assert.Contains(t, s, "✗ Failed")
	assert.Contains(t, s, "⊘ Skipped")
	assert.Contains(t, s, "Failures:")
	assert.Contains(t, s, "MCP Server › executes echo tool")
	assert.Contains(t, s, "echoed: expected a, got b")
	assert.Contains(t, s, "1 passed, 1 failed, 1 skipped (3 checks in 1.5s)")
}

func TestResultsRenderer_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewResultsRenderer(&out).Render(&domain.RunReport{}))
	assert.Equal(t, "No checks were run\n", out.String())
}

func TestChainsRenderer(t *testing.T) {
	noColor(t)
	result := &usecase.ListChainsResult{Chains: []usecase.ChainSummary{
		{
			Chain:     domain.Chain{Key: "base-sepolia", Name: "Base Sepolia", ChainID: 84532, X402Network: "eip155:84532", PaymentsSupported: true, IsTestNetwork: true},
			SubSuites: []string{usecase.SuiteA2A, usecase.SuiteX402},
		},
		{
			Chain:     domain.Chain{Key: "monad-mainnet", Name: "Monad Mainnet", ChainID: 143},
			SubSuites: []string{usecase.SuiteA2A},
		},
	}}

	var out bytes.Buffer
	require.NoError(t, NewChainsRenderer(&out, true).Render(result))

	s := out.String()
	assert.Contains(t, s, "base-sepolia")
	assert.Contains(t, s, "84532")
	assert.Contains(t, s, "eip155:84532")
	assert.Contains(t, s, "monad-mainnet")
	assert.Contains(t, s, usecase.SuiteX402)
}

func TestEncodeReport(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, EncodeReport(&out, sampleReport(), "json"))

		var doc map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, "run-1", doc["runId"])
		assert.Equal(t, "1.5s", doc["duration"])
		assert.Equal(t, map[string]any{"passed": 1.0, "failed": 1.0, "skipped": 1.0}, doc["summary"])
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, EncodeReport(&out, sampleReport(), "yaml"))

		var doc struct {
			RunID   string         `yaml:"runId"`
			Summary domain.Summary `yaml:"summary"`
		}
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, "run-1", doc.RunID)
		assert.Equal(t, domain.Summary{Passed: 1, Failed: 1, Skipped: 1}, doc.Summary)
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, EncodeReport(&bytes.Buffer{}, sampleReport(), "xml"))
	})
}

func TestWriteReportFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "nested", "report.json")
	require.NoError(t, WriteReportFile(jsonPath, sampleReport()))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	yamlPath := filepath.Join(dir, "report.yml")
	require.NoError(t, WriteReportFile(yamlPath, sampleReport()))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "runId: run-1")
}

func TestFormatHelpers(t *testing.T) {
	noColor(t)

	assert.Equal(t, "⚠️  key missing", FormatWarning("key missing"))
	assert.Equal(t, "❌ Something broke", FormatError("something broke"))
	assert.Equal(t, "✅ done", FormatSuccess("done"))
}
