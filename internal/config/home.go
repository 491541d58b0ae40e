package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the per-project state directory.
const HomeDirName = ".verprep"

// EnvHome overrides the state directory location.
const EnvHome = "VERPREP_HOME"

// GetHome returns the verprep home directory
// Priority order:
//  1. VERPREP_HOME environment variable (if set)
//  2. <cwd>/.verprep
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return GetHomeWithRoot(cwd)
}

// GetHomeWithRoot is GetHome with an explicit project root instead of the
// working directory.
func GetHomeWithRoot(root string) (string, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		if root == "" {
			return "", fmt.Errorf("no project root and %s is not set", EnvHome)
		}
		home = filepath.Join(root, HomeDirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create verprep home directory: %w", err)
	}
	return home, nil
}

// GetHistoryDBPathWithRoot returns <home>/history/runs.db, creating the
// history directory.
func GetHistoryDBPathWithRoot(root string) (string, error) {
	home, err := GetHomeWithRoot(root)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, "history")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}
	return filepath.Join(dir, "runs.db"), nil
}
