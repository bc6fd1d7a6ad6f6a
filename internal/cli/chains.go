package cli

import (
	"github.com/spf13/cobra"

	"github.com/mahzoun/create-8004-agent/internal/cli/render"
	"github.com/mahzoun/create-8004-agent/internal/config"
	"github.com/mahzoun/create-8004-agent/internal/usecase"
)

// NewChainsCmd creates the chains command
func NewChainsCmd() *cobra.Command {
	var (
		paymentsOnly bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:     "chains",
		Aliases: []string{"ls"},
		Short:   "List the chains a run can target",
		Long: `List every chain in the built-in catalog together with the number of
sub-suites a run would execute on it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get app from context
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			// Run use case
			result, err := app.ListChains.Run(cmd.Context(), usecase.ListChainsParams{PaymentsOnly: paymentsOnly})
			if err != nil {
				return err
			}

			// Render output
			if app.Config.Format != config.FormatTable {
				return render.Encode(cmd.OutOrStdout(), result.Chains, app.Config.Format)
			}
			return render.NewChainsRenderer(cmd.OutOrStdout(), verbose).Render(result)
		},
	}

	cmd.Flags().BoolVar(&paymentsOnly, "payments", false, "Only list chains with x402 payment checks")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the sub-suites for each chain")

	return cmd
}
