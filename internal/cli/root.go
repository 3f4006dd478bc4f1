// Package cli implements the batchsim command line.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command of batchsim.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batchsim",
		Short: "Replay synthetic frames through the drawbatch batching engine",
		Long: `batchsim replays scene descriptions through the two-level batch store and
the pre-sorted grouper, and reports how many draw calls each path issues.`,
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		NewRunCmd(),
		NewValidateCmd(),
	)
	return cmd
}
