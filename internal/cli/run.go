package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mahzoun/create-8004-agent/internal/app"
	"github.com/mahzoun/create-8004-agent/internal/cli/render"
	"github.com/mahzoun/create-8004-agent/internal/config"
	"github.com/mahzoun/create-8004-agent/internal/domain"
	domainconfig "github.com/mahzoun/create-8004-agent/internal/domain/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

const missingPayerWarning = config.PayerKeyEnv + " is not set: paid x402 checks will be skipped"

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var (
		all    bool
		suites []string
	)

	cmd := &cobra.Command{
		Use:   "run [chain...]",
		Short: "Run the conformance suites against one or more chains",
		Long: `Generate, boot and probe agent projects for each selected chain.

For every chain this command:
- Scaffolds one project per sub-suite with create-8004-agent
- Installs dependencies and switches the agent into mock mode
- Starts the A2A server on a free port, or the MCP server over stdio
- Runs the protocol checks and always stops the server afterwards

Paid x402 checks run on test networks only, and only when
TEST_PAYER_PRIVATE_KEY is set (in the environment or a .env file).`,
		Example: `  # Pick a chain interactively
  conform run

  # Run every chain
  conform run --all

  # Run the MCP and README suites on two chains
  conform run base-sepolia eth-sepolia --suite mcp --suite readme

  # Write a JSON report for CI
  conform run --all --non-interactive --report out/report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get app from context
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			chains, err := resolveChains(cmd, app, args, all)
			if err != nil {
				return err
			}

			warnMissingPayer(cmd.ErrOrStderr(), app.Config)

			// Run use case
			params := usecase.RunConformanceParams{
				Chains: chains,
				Suites: suites,
			}
			result, runErr := app.RunConformance.Run(cmd.Context(), params)
			if result == nil {
				return runErr
			}
			report := result.Report

			if app.Config.ReportPath != "" {
				if err := render.WriteReportFile(app.Config.ReportPath, report); err != nil {
					return err
				}
			}

			// Render output
			if app.Config.Format == config.FormatTable {
				err = render.NewResultsRenderer(cmd.OutOrStdout()).Render(report)
			} else {
				err = render.EncodeReport(cmd.OutOrStdout(), report, app.Config.Format)
			}
			if err != nil {
				return err
			}

			if runErr != nil {
				return runErr
			}
			if report.Failed() {
				return ErrChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Run every chain in the catalog")
	cmd.Flags().StringSliceVar(&suites, "suite", nil, "Only run sub-suites whose name contains this text (repeatable)")
	cmd.Flags().String("report", "", "Also write the report to this file (.json, .yaml)")
	cmd.Flags().Duration("startup-timeout", 0, "How long to wait for a server to accept connections (default 60s)")
	cmd.Flags().Int("port-base", 0, "First port handed to generated servers (default 30000)")

	return cmd
}

// warnMissingPayer tells the user up front that paid checks cannot run
func warnMissingPayer(w io.Writer, cfg *domainconfig.RuntimeConfig) {
	if cfg.PayerKey == nil {
		fmt.Fprintln(w, render.FormatWarning(missingPayerWarning))
	}
}

// resolveChains turns arguments into chain keys, prompting when none are given
func resolveChains(cmd *cobra.Command, app *app.App, args []string, all bool) ([]domain.ChainKey, error) {
	if all && len(args) > 0 {
		return nil, fmt.Errorf("--all cannot be combined with chain arguments")
	}

	if len(args) > 0 {
		return lo.Map(args, func(a string, _ int) domain.ChainKey {
			return domain.ChainKey(strings.TrimSpace(a))
		}), nil
	}

	listed, err := app.ListChains.Run(cmd.Context(), usecase.ListChainsParams{})
	if err != nil {
		return nil, err
	}
	chains := lo.Map(listed.Chains, func(s usecase.ChainSummary, _ int) domain.Chain { return s.Chain })

	if all {
		return lo.Map(chains, func(c domain.Chain, _ int) domain.ChainKey { return c.Key }), nil
	}
	return app.Selector.SelectChains(cmd.Context(), chains)
}
