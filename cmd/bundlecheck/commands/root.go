package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit string) error {
	return NewRootCommand(version, commit).ExecuteContext(ctx)
}

// NewRootCommand builds the bundlecheck command tree.
func NewRootCommand(version, commit string) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "bundlecheck",
		Short: "Validate bundle descriptors",
		Long: `bundlecheck validates bundle descriptor files (JSON or YAML) against the
descriptor constraints: required fields, value sets, name patterns, variant
shapes of micro frontends and API claims, and cross-field dependencies.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
