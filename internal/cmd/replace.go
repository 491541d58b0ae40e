package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/config"
	"github.com/harrison/verprep/internal/models"
	"github.com/harrison/verprep/internal/preprocess"
)

// NewReplaceCommand creates the replace command
func NewReplaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Resolve @START/@END version markers",
		Long: `Rewrite the version markers of the source files found in each --dir and
write the result to the destination tree, changing the extension.

Markers have the form @START<op><prefix><version>@ and
@END<op><prefix><version>@ with <op> one of =, >, <, >=, <=. For every
check version, markers whose comparison with the target version holds are
removed; the others become comment delimiters so the enclosed code is
disabled. Markers for other prefixes or versions are left as they are
unless --strict is set.

Each --dir is a path pattern relative to --from whose segments are regular
expressions; "**" matches any number of directories.

Examples:
  verprep replace --from src --to out --from-ext jtmpl --prefix V --check-version 2 --check-version 3 --dir main/java --target 3
  verprep replace --dir '**' --strict --line-ending crlf`,
		Args: cobra.NoArgs,
		RunE: runReplace,
	}

	addGoalFlags(cmd)
	cmd.Flags().IntSlice("check-version", nil, "Version whose markers are resolved (repeatable, applied in order)")
	cmd.Flags().String("prefix", "", "Tag between operator and version in markers")
	cmd.Flags().StringArray("dir", nil, "Directory pattern, relative to --from, to rewrite (repeatable)")
	cmd.Flags().Bool("strict", false, "Fail files that still contain a marker with the prefix after rewriting")
	cmd.Flags().String("line-ending", "", "Line terminator written to output files: lf, crlf or cr")

	return cmd
}

func runReplace(cmd *cobra.Command, args []string) error {
	cfg, target, state, err := prepareGoal(cmd, func(cfg *config.Config) {
		s := &cfg.Replace
		applyGoalFlags(cmd, goalSection{&s.FromDir, &s.ToDir, &s.FromExt, &s.ToExt, &s.Exclude, &s.Clean})
		if cmd.Flags().Changed("check-version") {
			s.CheckVersions, _ = cmd.Flags().GetIntSlice("check-version")
		}
		if v := changedString(cmd, "prefix"); v != nil {
			s.Prefix = *v
		}
		if v, ok := changedStrings(cmd, "dir"); ok {
			s.Dirs = v
		}
		if v := changedBool(cmd, "strict"); v != nil {
			s.Strict = *v
		}
		if v := changedString(cmd, "line-ending"); v != nil {
			s.LineEnding = *v
		}
	})
	if err != nil {
		return err
	}

	lineEnding, err := config.ParseLineEnding(cfg.Replace.LineEnding)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := preprocess.ReplaceOptions{
		Options:       sharedOptions(cfg, target, state),
		Prefix:        cfg.Replace.Prefix,
		CheckVersions: cfg.Replace.CheckVersions,
		Dirs:          cfg.Replace.Dirs,
		Strict:        cfg.Replace.Strict,
		LineEnding:    lineEnding,
	}
	opts.FromDir = cfg.Replace.FromDir
	opts.ToDir = cfg.Replace.ToDir
	opts.FromExt = cfg.Replace.FromExt
	opts.ToExt = cfg.Replace.ToExt
	opts.Exclude = cfg.Replace.Exclude
	opts.Clean = cfg.Replace.Clean

	return runGoal(cmd, cfg, func(ctx context.Context, p *preprocess.Preprocessor) (*models.RunResult, error) {
		return p.Replace(ctx, opts)
	})
}
