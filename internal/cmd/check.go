package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/fileutil"
	"github.com/harrison/verprep/internal/versioncond"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report whether files are eligible for the target version",
		Long: `Evaluate the version conditions of each file the way the copy goal does
and print the verdict. Nothing is copied.

Exits with an error when any file has a malformed condition.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("marker", "", "Eligibility marker (default: config copy.marker)")
	cmd.Flags().String("target", "", "Target version (default: config target_version, then $VERPREP_TARGET_VERSION)")
	cmd.Flags().String("encoding", "", "File encoding (default utf-8)")

	return cmd
}

// checkVerdict is the outcome of checking one file.
type checkVerdict struct {
	path     string
	eligible bool
	reason   string
	err      error
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v := changedString(cmd, "marker"); v != nil {
		cfg.Copy.Marker = *v
	}
	if cfg.Copy.Marker == "" {
		return fmt.Errorf("marker is empty: set --marker or copy.marker")
	}

	target, err := cfg.ResolveTargetVersion()
	if err != nil {
		return err
	}

	codec, err := fileutil.LookupEncoding(cfg.Encoding)
	if err != nil {
		return err
	}

	failures := 0
	for _, path := range args {
		v := checkFile(codec, path, cfg.Copy.Marker, target)
		printVerdict(cmd.OutOrStdout(), v)
		if v.err != nil {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d file(s) could not be checked", failures, len(args))
	}
	return nil
}

func checkFile(codec *fileutil.TextCodec, path, marker string, target int) checkVerdict {
	v := checkVerdict{path: path}

	lines, err := codec.ReadLines(path)
	if err != nil {
		v.err = err
		return v
	}

	conditions := 0
	for _, line := range lines {
		if strings.Contains(line, marker) {
			conditions++
		}
	}

	v.eligible, v.err = versioncond.EvaluateLines(lines, marker, target)
	switch {
	case v.err != nil:
	case conditions == 0:
		v.reason = "no version condition"
	case v.eligible:
		v.reason = fmt.Sprintf("%d condition(s) hold for version %d", conditions, target)
	default:
		v.reason = fmt.Sprintf("not eligible for version %d", target)
	}
	return v
}

func printVerdict(w io.Writer, v checkVerdict) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	switch {
	case v.err != nil:
		red.Fprint(w, "ERROR    ")
		fmt.Fprintf(w, "%s: %v\n", v.path, v.err)
	case v.eligible:
		green.Fprint(w, "ELIGIBLE ")
		fmt.Fprintf(w, "%s (%s)\n", v.path, v.reason)
	default:
		yellow.Fprint(w, "SKIPPED  ")
		fmt.Fprintf(w, "%s (%s)\n", v.path, v.reason)
	}
}
