package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/verprep/internal/config"
)

// isolate points every state location at a fresh temp dir and returns a
// config path that does not exist yet.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvTargetVersion, "")

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	return filepath.Join(home, "config.yaml")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCopyCommand(t *testing.T) {
	cfgPath := isolate(t)
	from := t.TempDir()
	to := filepath.Join(t.TempDir(), "out")
	logDir := filepath.Join(t.TempDir(), "logs")
	writeFile(t, filepath.Join(from, "pkg", "A.jtmpl"), "// 100<=VERSION\nclass A {}\n")
	writeFile(t, filepath.Join(from, "pkg", "B.jtmpl"), "// 200<=VERSION\nclass B {}\n")

	out, err := execute(t, "copy", "--config", cfgPath, "--log-dir", logDir,
		"--from", from, "--to", to, "--from-ext", "jtmpl", "--marker", "VERSION", "--target", "150")
	require.NoError(t, err, out)

	assert.FileExists(t, filepath.Join(to, "pkg", "A.java"))
	assert.NoFileExists(t, filepath.Join(to, "pkg", "B.java"))
	assert.Contains(t, out, "=== Copy Summary ===")
	assert.Contains(t, out, "Target version: 150")
	assert.Contains(t, out, "Logs written to: "+logDir)

	out, err = execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "copy")
	assert.Contains(t, out, "150")
}

func TestCopyCommand_TargetFromEnvironment(t *testing.T) {
	cfgPath := isolate(t)
	t.Setenv(config.EnvTargetVersion, "250")
	from := t.TempDir()
	to := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(from, "B.jtmpl"), "// 200<=VERSION\n")

	out, err := execute(t, "copy", "--config", cfgPath, "--log-dir", t.TempDir(),
		"--from", from, "--to", to, "--from-ext", "jtmpl", "--marker", "VERSION")
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(to, "B.java"))
}

func TestCopyCommand_MissingTarget(t *testing.T) {
	cfgPath := isolate(t)

	_, err := execute(t, "copy", "--config", cfgPath, "--log-dir", t.TempDir(),
		"--from", t.TempDir(), "--to", t.TempDir(), "--from-ext", "jtmpl", "--marker", "VERSION")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoTargetVersion)
}

func TestCopyCommand_FromConfigFile(t *testing.T) {
	cfgPath := isolate(t)
	from := t.TempDir()
	to := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(from, "A.tmpl"), "// VER=7\n")

	writeFile(t, cfgPath, `target_version: "7"
log_dir: `+filepath.Join(t.TempDir(), "logs")+`
copy:
  from_dir: `+from+`
  to_dir: `+to+`
  from_ext: tmpl
  to_ext: txt
  marker: VER
history:
  enabled: false
`)

	out, err := execute(t, "copy", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.FileExists(t, filepath.Join(to, "A.txt"))
}

func TestCopyCommand_InvalidConfig(t *testing.T) {
	cfgPath := isolate(t)

	_, err := execute(t, "copy", "--config", cfgPath, "--workers", "0", "--target", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestCopyCommand_MalformedConditionFails(t *testing.T) {
	cfgPath := isolate(t)
	from := t.TempDir()
	logDir := t.TempDir()
	writeFile(t, filepath.Join(from, "Bad.jtmpl"), "// VERSION\n")

	out, err := execute(t, "copy", "--config", cfgPath, "--log-dir", logDir,
		"--from", from, "--to", t.TempDir(), "--from-ext", "jtmpl", "--marker", "VERSION", "--target", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy failed: 1/1 files failed")
	assert.Contains(t, out, "FAILED")

	runLog, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(runLog), "[ERROR] copy failed: 1/1 files failed")
}

func TestReplaceCommand(t *testing.T) {
	cfgPath := isolate(t)
	from := t.TempDir()
	to := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(from, "main", "A.jtmpl"), "a@START>=V2@\nb@END>=V2@\n")

	out, err := execute(t, "replace", "--config", cfgPath, "--log-dir", t.TempDir(),
		"--from", from, "--to", to, "--from-ext", ".jtmpl", "--prefix", "V",
		"--check-version", "2", "--dir", "main", "--target", "3", "--line-ending", "crlf")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(to, "main", "A.java"))
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", string(data))
	assert.Contains(t, out, "=== Replace Summary ===")
}

func TestReplaceCommand_BadLineEnding(t *testing.T) {
	cfgPath := isolate(t)

	_, err := execute(t, "replace", "--config", cfgPath, "--target", "1", "--line-ending", "nel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace.line_ending")
}

func TestResolveCommand(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "x.jtmpl"), "")
	writeFile(t, filepath.Join(root, "a", "b", "y.jtmpl"), "")
	writeFile(t, filepath.Join(root, "a", "b", "z.txt"), "")

	out, err := execute(t, "resolve", root, `**/.*\\.jtmpl`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a", "x.jtmpl"),
		filepath.Join(root, "a", "b", "y.jtmpl"),
	}, lines)

	out, err = execute(t, "resolve", root, "a/.*", "--mode", "dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b")+"\n", out)

	_, err = execute(t, "resolve", root, "x", "--mode", "bogus")
	assert.Error(t, err)

	_, err = execute(t, "resolve", filepath.Join(root, "a", "x.jtmpl"), "x")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	cfgPath := isolate(t)
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.jtmpl")
	old := filepath.Join(dir, "old.jtmpl")
	plain := filepath.Join(dir, "plain.jtmpl")
	writeFile(t, ok, "// 100<=VERSION\n")
	writeFile(t, old, "// VERSION<100\n")
	writeFile(t, plain, "class Plain {}\n")

	out, err := execute(t, "check", "--config", cfgPath, "--marker", "VERSION", "--target", "150", ok, old, plain)
	require.NoError(t, err)
	assert.Contains(t, out, "ELIGIBLE "+ok)
	assert.Contains(t, out, "SKIPPED  "+old+" (not eligible for version 150)")
	assert.Contains(t, out, "SKIPPED  "+plain+" (no version condition)")

	bad := filepath.Join(dir, "bad.jtmpl")
	writeFile(t, bad, "VERSION\n")
	out, err = execute(t, "check", "--config", cfgPath, "--marker", "VERSION", "--target", "150", bad, ok)
	require.Error(t, err)
	assert.Contains(t, out, "ERROR    "+bad)
	assert.Contains(t, err.Error(), "1 of 2 file(s)")
}

func TestCheckCommand_RequiresMarker(t *testing.T) {
	cfgPath := isolate(t)

	_, err := execute(t, "check", "--config", cfgPath, "--target", "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker is empty")
}

func TestHistoryCommand_Empty(t *testing.T) {
	cfgPath := isolate(t)

	out, err := execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestHistoryCommand_ShowRun(t *testing.T) {
	cfgPath := isolate(t)
	from := t.TempDir()
	writeFile(t, filepath.Join(from, "A.jtmpl"), "// 1<=VERSION\n")
	writeFile(t, filepath.Join(from, "B.jtmpl"), "nothing\n")

	_, err := execute(t, "copy", "--config", cfgPath, "--log-dir", t.TempDir(),
		"--from", from, "--to", t.TempDir(), "--from-ext", "jtmpl", "--marker", "VERSION", "--target", "5", "--dry-run")
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "(dry run)")

	fields := strings.Fields(strings.Split(strings.TrimSpace(out), "\n")[1])
	require.NotEmpty(t, fields)

	out, err = execute(t, "history", "--config", cfgPath, "--run", fields[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Goal: copy")
	assert.Contains(t, out, "Dry run: yes")
	assert.Contains(t, out, "no version condition")

	_, err = execute(t, "history", "--config", cfgPath, "--run", "zzzz")
	assert.Error(t, err)
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "15ms", formatMillis(15))
	assert.Equal(t, "1.5s", formatMillis(1500))
	assert.Equal(t, "8", shortID("8"))
	assert.Equal(t, "abcdefgh", shortID("abcdefgh-1234"))
}
