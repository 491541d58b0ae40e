package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for verprep
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verprep",
		Short: "Multi-version source-tree preprocessor",
		Long: `verprep specializes a version-tagged source tree for one target version.

The copy goal materializes only the files whose eligibility directives hold
for the target version. The replace goal resolves @START/@END markers,
leaving satisfied regions as code and wrapping the rest in comments.

Configuration is loaded from .verprep/config.yaml if present.
CLI flags override configuration file settings.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .verprep/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run logs")

	// Add subcommands
	cmd.AddCommand(NewCopyCommand())
	cmd.AddCommand(NewReplaceCommand())
	cmd.AddCommand(NewResolveCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
