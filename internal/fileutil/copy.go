package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile copies src to dst, creating dst's parent directories. An existing
// dst is truncated. The copy keeps src's permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination %s: %w", dst, err)
	}
	return nil
}

// RemoveTree removes every entry beneath path. When includeSelf is true
// path itself is removed as well. A missing path is not an error.
func RemoveTree(path string, includeSelf bool) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if includeSelf || !info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to list directory %s: %w", path, err)
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if err := os.RemoveAll(child); err != nil {
			return fmt.Errorf("failed to remove %s: %w", child, err)
		}
	}
	return nil
}

// NormalizeExtension trims surrounding space and a single leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}

// ChangeExtension replaces the last extension of name with ext. A name
// without an extension gets ext appended.
func ChangeExtension(name, ext string) string {
	ext = NormalizeExtension(ext)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// DestinationPath maps file, which must live beneath srcRoot, to the same
// relative location beneath dstRoot with its extension changed to toExt.
func DestinationPath(srcRoot, dstRoot, file, toExt string) (string, error) {
	rel, err := filepath.Rel(srcRoot, file)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", file, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not beneath %s", file, srcRoot)
	}
	return filepath.Join(dstRoot, ChangeExtension(rel, toExt)), nil
}
