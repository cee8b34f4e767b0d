package commands

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "laurel",
		Short: "Contributor activity aggregation and achievement pipeline",
		Long: `Laurel ingests per-contributor activity from GitHub, derives
statistical aggregates and awards tiered achievement badges. Each
subcommand runs one pipeline stage; every stage is idempotent and safe
to rerun.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Register subcommands
	rootCmd.AddCommand(NewCmdSeed())
	rootCmd.AddCommand(NewCmdSync())
	rootCmd.AddCommand(NewCmdAggregate())
	rootCmd.AddCommand(NewCmdBadges())
	rootCmd.AddCommand(NewCmdExport())
	rootCmd.AddCommand(NewCmdImport())

	return rootCmd
}
