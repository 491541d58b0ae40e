package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/config"
	"github.com/harrison/verprep/internal/models"
	"github.com/harrison/verprep/internal/preprocess"
)

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the files eligible for the target version",
		Long: `Copy every source file whose version conditions hold for the target
version into the destination tree, changing its extension.

A version condition is a line containing the marker with one or two
comparisons built from digits, '<' and '='. The text before the marker is
the low bound (version OP target), the text after it the high bound
(target OP version). A file is copied when at least one line carries the
marker and every such line holds.

Examples:
  // 100<=VERSION          eligible from version 100 on
  // 100<=VERSION<200      eligible for versions 100 to 199
  // VERSION=150           eligible for version 150 only

  verprep copy --from src/main/template --to target/generated --from-ext jtmpl --marker VERSION --target 150
  verprep copy --dry-run --exclude '**/internal/**'`,
		Args: cobra.NoArgs,
		RunE: runCopy,
	}

	addGoalFlags(cmd)
	cmd.Flags().String("marker", "", "Eligibility marker searched for in every line")

	return cmd
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg, target, state, err := prepareGoal(cmd, func(cfg *config.Config) {
		s := &cfg.Copy
		applyGoalFlags(cmd, goalSection{&s.FromDir, &s.ToDir, &s.FromExt, &s.ToExt, &s.Exclude, &s.Clean})
		if v := changedString(cmd, "marker"); v != nil {
			s.Marker = *v
		}
	})
	if err != nil {
		return err
	}

	opts := preprocess.CopyOptions{
		Options: sharedOptions(cfg, target, state),
		Marker:  cfg.Copy.Marker,
	}
	opts.FromDir = cfg.Copy.FromDir
	opts.ToDir = cfg.Copy.ToDir
	opts.FromExt = cfg.Copy.FromExt
	opts.ToExt = cfg.Copy.ToExt
	opts.Exclude = cfg.Copy.Exclude
	opts.Clean = cfg.Copy.Clean

	return runGoal(cmd, cfg, func(ctx context.Context, p *preprocess.Preprocessor) (*models.RunResult, error) {
		return p.Copy(ctx, opts)
	})
}
