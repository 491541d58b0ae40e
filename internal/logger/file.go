package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/verprep/internal/models"
)

// FileLogger logs run events to files in the configured log directory.
// It creates a timestamped log file per run and maintains a latest.log
// symlink pointing to the most recent run.
// It is thread-safe and supports log level filtering.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing a new run log under logDir,
// which is created if missing. Messages below logLevel are dropped.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// run-YYYYMMDD-HHMMSS.log
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== verprep Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// RunFile returns the path of the current run log.
func (fl *FileLogger) RunFile() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogRunStart records the goal and the number of resolved files.
func (fl *FileLogger) LogRunStart(goal models.Goal, total int) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] Starting %s: %d %s\n", timestamp(), goal, total, plural(total, "file")))
}

// LogFileResult records one processed file. Unlike the console, skipped
// files are recorded at INFO so the run log lists every resolved file.
func (fl *FileLogger) LogFileResult(result models.FileResult) {
	level := "info"
	if result.Status == models.StatusFailed {
		level = "error"
	}
	if !fl.shouldLog(level) {
		return
	}

	line := fmt.Sprintf("[%s] %s", timestamp(), describeFile(result.Status, result))
	if result.Duration > 0 {
		line += fmt.Sprintf(" [%s]", result.Duration.Round(time.Microsecond))
	}
	fl.writeRunLog(line + "\n")
}

// LogSummary records the final statistics at INFO level.
func (fl *FileLogger) LogSummary(result models.RunResult) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	written, skipped, failed := result.Counts()

	status := "SUCCESS"
	if failed > 0 {
		status = "PARTIAL"
		if written == 0 {
			status = "FAILED"
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n[%s] === RUN SUMMARY ===\n", ts)
	fmt.Fprintf(&sb, "[%s] Run ID:       %s\n", ts, result.RunID)
	fmt.Fprintf(&sb, "[%s] Goal:         %s\n", ts, result.Goal)
	fmt.Fprintf(&sb, "[%s] Target:       %d\n", ts, result.TargetVersion)
	fmt.Fprintf(&sb, "[%s] Total files:  %d\n", ts, len(result.Files))
	fmt.Fprintf(&sb, "[%s] Written:      %d\n", ts, written)
	fmt.Fprintf(&sb, "[%s] Skipped:      %d\n", ts, skipped)
	fmt.Fprintf(&sb, "[%s] Failed:       %d\n", ts, failed)
	fmt.Fprintf(&sb, "[%s] Total time:   %.1fs\n", ts, result.Duration.Seconds())
	fmt.Fprintf(&sb, "[%s] Dry run:      %t\n", ts, result.DryRun)
	fmt.Fprintf(&sb, "[%s] Status:       %s\n", ts, status)
	fmt.Fprintf(&sb, "[%s] Completed at: %s\n", ts, time.Now().Format(time.RFC3339))

	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
