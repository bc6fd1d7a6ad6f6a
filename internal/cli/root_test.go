package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahzoun/create-8004-agent/internal/config"
	domainconfig "github.com/mahzoun/create-8004-agent/internal/domain/config"
)

func TestRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "chains", "version"}, names)

	for _, flag := range []string{"debug", "non-interactive", "format", "work-dir", "timeout"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCmd(t *testing.T) {
	config.SetBuildFlags("1.2.3", "abc123", "2025-01-01")
	t.Cleanup(func() { config.SetBuildFlags("dev", "unknown", "unknown") })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "conform version 1.2.3 (commit abc123, built 2025-01-01)\n", out.String())
}

func TestGetApp_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := getApp(cmd)
	assert.Error(t, err)
}

func TestRunCmd_RejectsAllWithChains(t *testing.T) {
	_, err := resolveChains(NewRunCmd(), nil, []string{"base-sepolia"}, true)
	assert.ErrorContains(t, err, "--all")
}

func TestWarnMissingPayer(t *testing.T) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	var out bytes.Buffer
	warnMissingPayer(&out, &domainconfig.RuntimeConfig{})
	assert.Equal(t, "⚠️  TEST_PAYER_PRIVATE_KEY is not set: paid x402 checks will be skipped\n", out.String())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	out.Reset()
	warnMissingPayer(&out, &domainconfig.RuntimeConfig{PayerKey: key})
	assert.Empty(t, out.String())
}
