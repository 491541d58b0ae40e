package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/verprep/internal/models"
)

// ErrInvalidOptions is wrapped by every option validation failure.
var ErrInvalidOptions = errors.New("invalid options")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

// FileError represents a failure to process one source file.
type FileError struct {
	Path    string // Source file
	Message string // Step that failed
	Err     error  // Underlying error (optional)
}

// NewFileError creates a new FileError.
func NewFileError(path, msg string, err error) *FileError {
	return &FileError{
		Path:    path,
		Message: msg,
		Err:     err,
	}
}

// Error implements the error interface for FileError. Path is not included.
func (e *FileError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *FileError) Unwrap() error {
	return e.Err
}

// RunError aggregates the file errors of one run.
type RunError struct {
	Goal       models.Goal  // Goal that was running
	FileErrors []*FileError // Individual file errors in resolution order
	Total      int          // Number of files resolved for the run
	Failed     int          // Number of files that failed
	Aborted    bool         // True when the run stopped at the first failure
}

// NewRunError creates an empty RunError for goal.
func NewRunError(goal models.Goal, total int) *RunError {
	return &RunError{
		Goal:       goal,
		FileErrors: []*FileError{},
		Total:      total,
	}
}

// Add appends a file error and increments the failure count.
func (e *RunError) Add(fileErr *FileError) {
	e.FileErrors = append(e.FileErrors, fileErr)
	e.Failed++
}

// Error implements the error interface for RunError.
func (e *RunError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s failed: %d/%d files failed", e.Goal, e.Failed, e.Total))
	if e.Aborted {
		sb.WriteString(" (aborted)")
	}

	if len(e.FileErrors) > 0 {
		sb.WriteString(":")
		for _, fileErr := range e.FileErrors {
			sb.WriteString(fmt.Sprintf("\n  - %s: %s", fileErr.Path, fileErr.Error()))
		}
	}

	return sb.String()
}

// Unwrap returns the file errors so errors.Is and errors.As can reach them.
func (e *RunError) Unwrap() []error {
	if len(e.FileErrors) == 0 {
		return nil
	}

	errs := make([]error, len(e.FileErrors))
	for i, fileErr := range e.FileErrors {
		errs[i] = fileErr
	}
	return errs
}

// IsRunError checks if the error is or wraps a RunError.
func IsRunError(err error) bool {
	if err == nil {
		return false
	}
	var re *RunError
	return errors.As(err, &re)
}
