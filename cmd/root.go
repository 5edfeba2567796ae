// Package cmd defines the CLI commands for the research agent executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates the root command. All real work happens in subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "researchd",
		Short: "Developer tool research agent",
		Long: `researchd serves the developer tool research API. It accepts search
queries, forwards them to the research backend, and tracks search
progress and notifications for clients.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
