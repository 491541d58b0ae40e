package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/verprep/internal/config"
	"github.com/harrison/verprep/internal/history"
	"github.com/harrison/verprep/internal/logger"
	"github.com/harrison/verprep/internal/models"
	"github.com/harrison/verprep/internal/preprocess"
)

// loadConfig loads the config file named by --config, or
// .verprep/config.yaml in the working directory, and applies the shared
// flags that were set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.MergeWithFlags(config.FlagOverrides{
		TargetVersion:   changedString(cmd, "target"),
		Encoding:        changedString(cmd, "encoding"),
		Workers:         changedInt(cmd, "workers"),
		ContinueOnError: changedBool(cmd, "continue-on-error"),
		DryRun:          changedBool(cmd, "dry-run"),
		LogLevel:        changedString(cmd, "log-level"),
		LogDir:          changedString(cmd, "log-dir"),
	})
	return cfg, nil
}

// changedString returns a pointer to the flag value, or nil when the flag
// does not exist on cmd or was not set.
func changedString(cmd *cobra.Command, name string) *string {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func changedStrings(cmd *cobra.Command, name string) ([]string, bool) {
	if !cmd.Flags().Changed(name) {
		return nil, false
	}
	v, _ := cmd.Flags().GetStringArray(name)
	return v, true
}

// addGoalFlags registers the flags shared by copy and replace.
func addGoalFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "Source tree root")
	cmd.Flags().String("to", "", "Destination tree root (created if missing)")
	cmd.Flags().String("from-ext", "", "Extension of source files")
	cmd.Flags().String("to-ext", "", "Extension written to the destination (default java)")
	cmd.Flags().String("target", "", "Target version (default: config target_version, then $"+config.EnvTargetVersion+")")
	cmd.Flags().StringArray("exclude", nil, "Doublestar pattern, relative to --from, of files to skip (repeatable)")
	cmd.Flags().String("encoding", "", "Source file encoding (default utf-8)")
	cmd.Flags().Int("workers", 0, "Number of files processed concurrently")
	cmd.Flags().Bool("dry-run", false, "Evaluate files without writing anything")
	cmd.Flags().Bool("clean", false, "Empty the destination tree before the run")
	cmd.Flags().Bool("continue-on-error", false, "Keep processing after a file fails")
}

// goalSection is the part of a goal's config section shared by both goals.
type goalSection struct {
	FromDir, ToDir, FromExt, ToExt *string
	Exclude                        *[]string
	Clean                          *bool
}

// applyGoalFlags copies the set goal flags into the config section.
func applyGoalFlags(cmd *cobra.Command, s goalSection) {
	if v := changedString(cmd, "from"); v != nil {
		*s.FromDir = *v
	}
	if v := changedString(cmd, "to"); v != nil {
		*s.ToDir = *v
	}
	if v := changedString(cmd, "from-ext"); v != nil {
		*s.FromExt = *v
	}
	if v := changedString(cmd, "to-ext"); v != nil {
		*s.ToExt = *v
	}
	if v, ok := changedStrings(cmd, "exclude"); ok {
		*s.Exclude = v
	}
	if v := changedBool(cmd, "clean"); v != nil {
		*s.Clean = *v
	}
}

// sharedOptions builds the preprocess options common to both goals.
func sharedOptions(cfg *config.Config, target int, stateDir string) preprocess.Options {
	return preprocess.Options{
		TargetVersion:   target,
		Encoding:        cfg.Encoding,
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		DryRun:          cfg.DryRun,
		StateDir:        stateDir,
	}
}

// goalRunner runs one goal with a ready Preprocessor.
type goalRunner func(ctx context.Context, p *preprocess.Preprocessor) (*models.RunResult, error)

// runGoal wires loggers and history around run and prunes old runs afterwards.
func runGoal(cmd *cobra.Command, cfg *config.Config, run goalRunner) error {
	consoleLog := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	var fileLog *logger.FileLogger
	if cfg.LogDir != "" {
		var err error
		fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			consoleLog.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			defer fileLog.Close()
		}
	}

	var log logger.Logger = consoleLog
	if fileLog != nil {
		log = logger.NewMultiLogger(consoleLog, fileLog)
	}

	var recorder preprocess.Recorder
	store, err := openHistory(cfg)
	if err != nil {
		consoleLog.LogWarn(fmt.Sprintf("run history disabled: %v", err))
	} else if store != nil {
		defer store.Close()
		recorder = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, runErr := run(ctx, preprocess.NewPreprocessor(log, recorder))
	if runErr != nil {
		log.LogError(runErr.Error())
	}

	if store != nil && cfg.History.KeepRuns > 0 {
		if removed, err := store.Prune(context.Background(), cfg.History.KeepRuns); err != nil {
			consoleLog.LogWarn(fmt.Sprintf("failed to prune run history: %v", err))
		} else if removed > 0 {
			consoleLog.LogDebug(fmt.Sprintf("pruned %d old run(s) from history", removed))
		}
	}

	if fileLog != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Logs written to: %s\n", fileLog.RunFile())
	}
	return runErr
}

// openHistory opens the run history store, or returns nil when history is disabled.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	dbPath, err := historyDBPath(cfg)
	if err != nil {
		return nil, err
	}
	return history.NewStore(dbPath)
}

func historyDBPath(cfg *config.Config) (string, error) {
	if cfg.History.DBPath != "" {
		return cfg.History.DBPath, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return config.GetHistoryDBPathWithRoot(cwd)
}

// stateDir returns the directory holding the run lock.
func stateDir() (string, error) {
	home, err := config.GetHome()
	if err != nil {
		return "", fmt.Errorf("failed to get verprep home: %w", err)
	}
	return filepath.Clean(home), nil
}

// prepareGoal loads and validates the configuration and resolves the target
// version and state directory.
func prepareGoal(cmd *cobra.Command, section func(cfg *config.Config)) (*config.Config, int, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, 0, "", err
	}
	section(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, 0, "", fmt.Errorf("invalid configuration: %w", err)
	}

	target, err := cfg.ResolveTargetVersion()
	if err != nil {
		return nil, 0, "", err
	}

	dir, err := stateDir()
	if err != nil {
		return nil, 0, "", err
	}
	return cfg, target, dir, nil
}
