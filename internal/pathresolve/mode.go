package pathresolve

import (
	"fmt"
	"os"
	"strings"
)

// MatchMode selects which entry kinds survive a listing step.
type MatchMode int

const (
	// FilesOnly keeps regular files. This is the default mode.
	FilesOnly MatchMode = iota
	// DirsOnly keeps directories.
	DirsOnly
	// Both keeps regular files and directories.
	Both
)

// String returns the flag spelling of the mode.
func (m MatchMode) String() string {
	switch m {
	case FilesOnly:
		return "file"
	case DirsOnly:
		return "dir"
	case Both:
		return "all"
	default:
		return "unknown"
	}
}

// ParseMatchMode converts a flag value into a MatchMode.
// Accepted values: file, files, dir, dirs, all, both (case-insensitive).
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file", "files":
		return FilesOnly, nil
	case "dir", "dirs":
		return DirsOnly, nil
	case "all", "both":
		return Both, nil
	default:
		return FilesOnly, fmt.Errorf("invalid match mode %q, must be one of: file, dir, all", s)
	}
}

// entryKind classifies a filesystem object after following symlinks.
type entryKind int

const (
	kindOther entryKind = iota
	kindFile
	kindDir
)

// accepts reports whether an entry of kind k is kept by the mode.
// Objects that are neither files nor directories are never kept.
func (m MatchMode) accepts(k entryKind) bool {
	switch k {
	case kindFile:
		return m != DirsOnly
	case kindDir:
		return m != FilesOnly
	default:
		return false
	}
}

// kindOf stats path, following symlinks. Missing paths and dangling links
// are reported as kindOther.
func kindOf(path string) entryKind {
	info, err := os.Stat(path)
	if err != nil {
		return kindOther
	}
	switch {
	case info.IsDir():
		return kindDir
	case info.Mode().IsRegular():
		return kindFile
	default:
		return kindOther
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
