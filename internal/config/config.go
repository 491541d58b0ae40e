package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvTargetVersion is consulted when no target version is configured.
const EnvTargetVersion = "VERPREP_TARGET_VERSION"

// ErrNoTargetVersion is returned when neither the config, the flags nor the
// environment name a target version.
var ErrNoTargetVersion = errors.New("target version is null or empty")

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string // YAML key, dotted for nested sections
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CopyConfig holds settings for the copy goal
type CopyConfig struct {
	// FromDir is the source tree root
	FromDir string `yaml:"from_dir"`

	// ToDir is the destination tree root, created when missing
	ToDir string `yaml:"to_dir"`

	// FromExt selects source files by extension
	FromExt string `yaml:"from_ext"`

	// ToExt replaces FromExt on every copied file
	ToExt string `yaml:"to_ext"`

	// Marker is the eligibility directive looked for in each line
	Marker string `yaml:"marker"`

	// Exclude lists doublestar patterns, relative to FromDir, to skip
	Exclude []string `yaml:"exclude"`

	// Clean empties ToDir before copying
	Clean bool `yaml:"clean"`
}

// ReplaceConfig holds settings for the replace goal
type ReplaceConfig struct {
	FromDir string   `yaml:"from_dir"`
	ToDir   string   `yaml:"to_dir"`
	FromExt string   `yaml:"from_ext"`
	ToExt   string   `yaml:"to_ext"`
	Exclude []string `yaml:"exclude"`
	Clean   bool     `yaml:"clean"`

	// Prefix is the tag between operator and version in @START/@END markers
	Prefix string `yaml:"prefix"`

	// CheckVersions are resolved in order
	CheckVersions []int `yaml:"check_versions"`

	// Dirs are path patterns, relative to FromDir, naming the directories to rewrite
	Dirs []string `yaml:"dirs"`

	// Strict fails a file when a marker with Prefix survives rewriting
	Strict bool `yaml:"strict"`

	// LineEnding is lf, crlf or cr
	LineEnding string `yaml:"line_ending"`
}

// HistoryConfig represents run history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath overrides the default <home>/history/runs.db
	DBPath string `yaml:"db_path"`

	// KeepRuns is the number of most recent runs kept (0 = unlimited)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents verprep configuration options
type Config struct {
	// TargetVersion is the version the output tree is specialized for.
	// Empty falls back to the VERPREP_TARGET_VERSION environment variable.
	TargetVersion string `yaml:"target_version"`

	// Encoding names the text encoding of source files (WHATWG label)
	Encoding string `yaml:"encoding"`

	// Workers bounds concurrent file processing
	Workers int `yaml:"workers"`

	// ContinueOnError keeps processing after a file fails
	ContinueOnError bool `yaml:"continue_on_error"`

	// DryRun evaluates files without writing anything
	DryRun bool `yaml:"dry_run"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	Copy    CopyConfig    `yaml:"copy"`
	Replace ReplaceConfig `yaml:"replace"`
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Encoding: "utf-8",
		Workers:  1,
		LogLevel: "info",
		LogDir:   ".verprep/logs",
		Copy: CopyConfig{
			ToExt: "java",
		},
		Replace: ReplaceConfig{
			ToExt:      "java",
			LineEnding: "lf",
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepRuns: 200,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// Keys present in the file replace the defaults; unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.TargetVersion = strings.TrimSpace(cfg.TargetVersion)
	return cfg, nil
}

// LoadConfigFromDir loads configuration from .verprep/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, HomeDirName, "config.yaml"))
}

// FlagOverrides carries CLI flag values. Nil fields leave the config untouched.
type FlagOverrides struct {
	TargetVersion   *string
	Encoding        *string
	Workers         *int
	ContinueOnError *bool
	DryRun          *bool
	LogLevel        *string
	LogDir          *string
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.TargetVersion != nil {
		c.TargetVersion = strings.TrimSpace(*f.TargetVersion)
	}
	if f.Encoding != nil {
		c.Encoding = *f.Encoding
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.ContinueOnError != nil {
		c.ContinueOnError = *f.ContinueOnError
	}
	if f.DryRun != nil {
		c.DryRun = *f.DryRun
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
}

// ResolveTargetVersion returns the configured target version, falling back
// to the VERPREP_TARGET_VERSION environment variable.
func (c *Config) ResolveTargetVersion() (int, error) {
	raw := c.TargetVersion
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv(EnvTargetVersion))
	}
	if raw == "" {
		return 0, ErrNoTargetVersion
	}

	version, err := strconv.Atoi(raw)
	if err != nil {
		return 0, NewValidationError("target_version", "%q is not an integer", raw)
	}
	return version, nil
}

// LineEndings maps line_ending names to terminators.
var LineEndings = map[string]string{
	"lf":   "\n",
	"crlf": "\r\n",
	"cr":   "\r",
}

// ParseLineEnding converts a line_ending name to its terminator.
func ParseLineEnding(name string) (string, error) {
	if name == "" {
		return "\n", nil
	}
	ending, ok := LineEndings[strings.ToLower(name)]
	if !ok {
		return "", NewValidationError("replace.line_ending", "%q must be one of: lf, crlf, cr", name)
	}
	return ending, nil
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return NewValidationError("log_level", "%q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Workers < 1 {
		return NewValidationError("workers", "must be >= 1, got %d", c.Workers)
	}

	if c.TargetVersion != "" {
		if _, err := strconv.Atoi(c.TargetVersion); err != nil {
			return NewValidationError("target_version", "%q is not an integer", c.TargetVersion)
		}
	}

	if _, err := ParseLineEnding(c.Replace.LineEnding); err != nil {
		return err
	}

	if c.History.KeepRuns < 0 {
		return NewValidationError("history.keep_runs", "must be >= 0, got %d", c.History.KeepRuns)
	}

	return nil
}
