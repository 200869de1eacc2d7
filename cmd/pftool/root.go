package main

import (
	"context"

	"github.com/spf13/cobra"
)

var verbose bool
var logPath string

// newRootCommand builds the pftool root command, grounded on desync's
// newRootCommand (cmd/desync/root.go): a bare cobra.Command carrying only
// persistent flags, with every real operation living in a subcommand.
func newRootCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pftool",
		Short: "Parallel file-tool for high-throughput copy and compare across HPC storage.",
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")
	cmd.PersistentFlags().StringVar(&logPath, "log", "", "write a compressed copy of the run log to this path")

	cmd.AddCommand(newCopyCommand(ctx))
	cmd.AddCommand(newCompareCommand(ctx))
	cmd.AddCommand(newListCommand(ctx))
	return cmd
}
