package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mahzoun/create-8004-agent/internal/config"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of conform",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "conform version %s (commit %s, built %s)\n", config.Version, config.Commit, config.Date)
		},
	}
}
