package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/pathresolve"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <root> <pattern>",
		Short: "List the paths a pattern resolves to",
		Long: `Resolve a path pattern against a directory tree and print every match,
one per line.

Pattern segments are separated by "/" and are regular expressions matched
against whole entry names. The segment "**" matches any number of
directory levels. A backslash meant for the regular expression must be
doubled.

Examples:
  verprep resolve src '**/.*\\.jtmpl'
  verprep resolve src 'main/.*/impl' --mode dir`,
		Args: cobra.ExactArgs(2),
		RunE: runResolve,
	}

	cmd.Flags().String("mode", "file", "Entries to keep: file, dir or all")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	root, pattern := args[0], args[1]

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := pathresolve.ParseMatchMode(modeFlag)
	if err != nil {
		return err
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", root)
	}

	matches, err := pathresolve.Resolve(root, pattern, mode)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range matches {
		fmt.Fprintln(out, m)
	}
	return nil
}
