// Package logger provides logging implementations for preprocessing runs.
//
// The logger package reports run progress at the file and summary levels.
// Implementations are thread-safe, since files may be processed by several
// workers, and write to the console or to per-run log files.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/verprep/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is enabled when writing to a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	progress    *ProgressBar
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive colors.
// NO_COLOR (via fatih/color) disables colors everywhere.
func isTerminal(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if _, ok := levelValues[normalized]; ok {
		return normalized
	}
	return "info"
}

var levelValues = map[string]int{
	"trace": levelTrace,
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	if v, ok := levelValues[level]; ok {
		return v
	}
	return levelInfo
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
// Format: "[HH:MM:SS] [TRACE] <message>"
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := level
	if cl.colorOutput {
		label = levelColor(level).Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), label, message)
}

// LogRunStart announces a goal and resets the progress bar.
// Format: "[HH:MM:SS] Starting copy: <n> files"
func (cl *ConsoleLogger) LogRunStart(goal models.Goal, total int) {
	cl.mutex.Lock()
	cl.progress = NewProgressBar(total, 20, cl.colorOutput)
	cl.mutex.Unlock()

	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	label := string(goal)
	if cl.colorOutput {
		label = color.New(color.Bold).Sprint(label)
	}
	fmt.Fprintf(cl.writer, "[%s] Starting %s: %d %s\n", timestamp(), label, total, plural(total, "file"))
}

// LogFileResult logs one processed file. Written files are logged at INFO,
// skipped files at DEBUG and failures at ERROR.
// Format: "[HH:MM:SS] [====      ] 2/5 (40%) COPIED <src> -> <dst>"
func (cl *ConsoleLogger) LogFileResult(result models.FileResult) {
	cl.mutex.Lock()
	if cl.progress != nil {
		cl.progress.Increment()
	}
	cl.mutex.Unlock()

	level := "info"
	switch result.Status {
	case models.StatusSkipped:
		level = "debug"
	case models.StatusFailed:
		level = "error"
	}
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := result.Status
	if cl.colorOutput {
		status = statusColor(result.Status).Sprint(status)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ", timestamp())
	if cl.progress != nil {
		sb.WriteString(cl.progress.Render())
		sb.WriteString(" ")
	}
	sb.WriteString(describeFile(status, result))
	sb.WriteString("\n")

	cl.writer.Write([]byte(sb.String()))
}

// LogSummary logs the run summary with per-outcome counts at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.RunResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	written, skipped, failed := result.Counts()

	header := fmt.Sprintf("=== %s Summary ===", titleCase(string(result.Goal)))
	writtenText := fmt.Sprintf("Written: %d", written)
	failedText := fmt.Sprintf("Failed: %d", failed)
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		writtenText = color.New(color.FgGreen).Sprint(writtenText)
		if failed > 0 {
			failedText = color.New(color.FgRed).Sprint(failedText)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", ts, header)
	fmt.Fprintf(&sb, "[%s] Run: %s\n", ts, result.RunID)
	fmt.Fprintf(&sb, "[%s] Target version: %d\n", ts, result.TargetVersion)
	fmt.Fprintf(&sb, "[%s] Total files: %d\n", ts, len(result.Files))
	fmt.Fprintf(&sb, "[%s] %s\n", ts, writtenText)
	fmt.Fprintf(&sb, "[%s] Skipped: %d\n", ts, skipped)
	fmt.Fprintf(&sb, "[%s] %s\n", ts, failedText)
	fmt.Fprintf(&sb, "[%s] Duration: %s\n", ts, formatDuration(result.Duration))
	if result.DryRun {
		fmt.Fprintf(&sb, "[%s] Dry run: no files were written\n", ts)
	}
	if failed > 0 {
		fmt.Fprintf(&sb, "[%s] Failed files:\n", ts)
		for _, f := range result.FailedFiles() {
			fmt.Fprintf(&sb, "[%s]   - %s: %v\n", ts, f.Source, f.Error)
		}
	}

	cl.writer.Write([]byte(sb.String()))
}

// describeFile renders the status-specific tail of a file result line.
func describeFile(status string, result models.FileResult) string {
	switch result.Status {
	case models.StatusSkipped:
		if result.Reason != "" {
			return fmt.Sprintf("%s %s (%s)", status, result.Source, result.Reason)
		}
		return fmt.Sprintf("%s %s", status, result.Source)
	case models.StatusFailed:
		return fmt.Sprintf("%s %s: %v", status, result.Source, result.Error)
	default:
		return fmt.Sprintf("%s %s -> %s", status, result.Source, result.Destination)
	}
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "350ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NoOpLogger discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogRunStart(models.Goal, int) {}
func (n *NoOpLogger) LogFileResult(models.FileResult) {}
func (n *NoOpLogger) LogSummary(models.RunResult) {}
