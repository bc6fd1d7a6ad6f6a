package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mahzoun/create-8004-agent/internal/cli"
	"github.com/mahzoun/create-8004-agent/internal/cli/render"
	"github.com/mahzoun/create-8004-agent/internal/config"
)

// Set by -ldflags at release time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	// Interrupts cancel the run so supervised servers are stopped
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, cli.ErrChecksFailed) {
			fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
		}
		stop()
		os.Exit(1)
	}
}
