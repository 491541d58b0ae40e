package preprocess

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/harrison/verprep/internal/fileutil"
)

// Options holds the settings shared by both goals.
type Options struct {
	FromDir       string   // Source tree root, must be an existing directory
	ToDir         string   // Destination tree root, created when missing
	FromExt       string   // Extension of source files, with or without a leading dot
	ToExt         string   // Extension written in place of FromExt
	TargetVersion int      // Version the output is specialized for
	Encoding      string   // WHATWG encoding label; empty means utf-8
	Exclude       []string // doublestar patterns relative to FromDir
	Workers       int      // Concurrent files; values below 1 mean 1

	// ContinueOnError processes every file and aggregates failures instead
	// of stopping at the first one.
	ContinueOnError bool

	DryRun bool // Evaluate and report without writing
	Clean  bool // Empty ToDir before the run

	// StateDir holds run.lock. Empty disables locking.
	StateDir string
}

// CopyOptions configures the copy goal.
type CopyOptions struct {
	Options

	// Marker is the eligibility directive searched for in every line
	Marker string
}

// ReplaceOptions configures the replace goal.
type ReplaceOptions struct {
	Options

	Prefix        string   // Tag between operator and version in markers
	CheckVersions []int    // Versions resolved in order
	Dirs          []string // Path patterns, relative to FromDir, of directories to rewrite
	Strict        bool     // Fail files that still carry a marker after rewriting
	LineEnding    string   // Terminator written after every line; empty means "\n"
}

// normalize validates the shared options and fills in defaults. It creates
// ToDir when it does not exist yet.
func (o *Options) normalize() error {
	if o.FromDir == "" {
		return invalidf("from dir is empty")
	}
	info, err := os.Stat(o.FromDir)
	if os.IsNotExist(err) {
		return invalidf("from dir does not exist: %s", o.FromDir)
	}
	if err != nil {
		return invalidf("from dir: %v", err)
	}
	if !info.IsDir() {
		return invalidf("from dir is not a directory: %s", o.FromDir)
	}

	if o.ToDir == "" {
		return invalidf("to dir is empty")
	}

	if o.FromExt = fileutil.NormalizeExtension(o.FromExt); o.FromExt == "" {
		return invalidf("from extension is empty")
	}
	if o.ToExt = fileutil.NormalizeExtension(o.ToExt); o.ToExt == "" {
		return invalidf("to extension is empty")
	}

	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return invalidf("exclude pattern %q is malformed", pattern)
		}
	}

	if o.Encoding == "" {
		o.Encoding = fileutil.DefaultEncoding
	}
	if o.Workers < 1 {
		o.Workers = 1
	}

	if o.FromDir, err = filepath.Abs(o.FromDir); err != nil {
		return invalidf("from dir: %v", err)
	}
	if o.ToDir, err = filepath.Abs(o.ToDir); err != nil {
		return invalidf("to dir: %v", err)
	}

	if o.Clean && within(o.FromDir, o.ToDir) {
		return invalidf("clean would remove the source tree: %s is inside %s", o.FromDir, o.ToDir)
	}

	info, err = os.Stat(o.ToDir)
	switch {
	case os.IsNotExist(err):
		if o.DryRun {
			return nil
		}
		if err := os.MkdirAll(o.ToDir, 0755); err != nil {
			return invalidf("to dir could not be created: %v", err)
		}
	case err != nil:
		return invalidf("to dir: %v", err)
	case !info.IsDir():
		return invalidf("to dir is not a directory: %s", o.ToDir)
	}
	return nil
}

func (o *CopyOptions) validate() error {
	if o.Marker == "" {
		return invalidf("marker is empty")
	}
	return o.Options.normalize()
}

func (o *ReplaceOptions) validate() error {
	if len(o.CheckVersions) == 0 {
		return invalidf("check versions are empty")
	}
	if len(o.Dirs) == 0 {
		return invalidf("replace target dirs are empty")
	}
	if o.Prefix == "" {
		return invalidf("prefix is empty")
	}
	if o.LineEnding == "" {
		o.LineEnding = "\n"
	}
	return o.Options.normalize()
}

// within reports whether path equals dir or lies beneath it. Both must be absolute.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
