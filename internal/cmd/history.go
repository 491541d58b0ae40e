package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/history"
	"github.com/harrison/verprep/internal/models"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
		Long: `List recent copy and replace runs, newest first, or show the per-file
results of one run with --run. A run may be named by a unique prefix of
its ID.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")
	cmd.Flags().String("run", "", "Show the files of the run with this ID or ID prefix")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	output := cmd.OutOrStdout()

	dbPath, err := historyDBPath(cfg)
	if err != nil {
		return fmt.Errorf("failed to get history database path: %w", err)
	}

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	runID, _ := cmd.Flags().GetString("run")
	if runID != "" {
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		files, err := store.FilesForRun(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("get run files: %w", err)
		}
		printRun(output, run, files)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}
	printRuns(output, runs)
	return nil
}

func printRuns(w io.Writer, runs []*history.RunRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "%-8s  %-19s  %-7s  %7s  %7s  %7s  %6s  %s\n",
		"RUN", "STARTED", "GOAL", "TARGET", "WRITTEN", "SKIPPED", "FAILED", "DURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%-8s  %-19s  %-7s  %7d  %7d  %7d  %6d  %s",
			shortID(r.ID), formatTimestamp(r.StartedAt), r.Goal, r.TargetVersion,
			r.Written, r.Skipped, r.Failed, formatMillis(r.DurationMs))
		if r.DryRun {
			gray.Fprint(w, "  (dry run)")
		}
		fmt.Fprintln(w)
	}
}

func printRun(w io.Writer, run *history.RunRecord, files []*history.FileRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	cyan.Fprintf(w, "\n=== Run %s ===\n\n", run.ID)
	fmt.Fprintf(w, "Goal: %s\n", run.Goal)
	fmt.Fprintf(w, "Target version: %d\n", run.TargetVersion)
	fmt.Fprintf(w, "Started: %s\n", formatTimestamp(run.StartedAt))
	fmt.Fprintf(w, "Duration: %s\n", formatMillis(run.DurationMs))
	if run.DryRun {
		fmt.Fprintln(w, "Dry run: yes")
	}
	fmt.Fprintf(w, "Files: %d written, %d skipped, %d failed\n\n", run.Written, run.Skipped, run.Failed)

	for _, f := range files {
		switch f.Status {
		case models.StatusFailed:
			red.Fprintf(w, "  %-9s ", f.Status)
			fmt.Fprintf(w, "%s: %s\n", f.Source, f.ErrorMessage)
		case models.StatusSkipped:
			yellow.Fprintf(w, "  %-9s ", f.Status)
			fmt.Fprintf(w, "%s (%s)\n", f.Source, f.Reason)
		default:
			green.Fprintf(w, "  %-9s ", f.Status)
			fmt.Fprintf(w, "%s -> %s\n", f.Source, f.Destination)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTimestamp formats a timestamp in local time for display
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatMillis(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", ms)
	}
	return d.Round(100 * time.Millisecond).String()
}
