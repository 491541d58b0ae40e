package logger

import (
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/verprep/internal/models"
)

// colorScheme defines consistent colors for levels and file statuses.
// Green: written files
// Red: failures and errors
// Yellow: warnings
// Cyan: debug output
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
	muted   *color.Color
}

var scheme = &colorScheme{
	success: color.New(color.FgGreen),
	fail:    color.New(color.FgRed),
	warn:    color.New(color.FgYellow),
	label:   color.New(color.FgCyan),
	muted:   color.New(color.FgHiBlack),
}

// levelColor returns the color used for a log level label.
func levelColor(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return scheme.muted
	case "DEBUG":
		return scheme.label
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return scheme.warn
	case "ERROR":
		return scheme.fail
	default:
		return color.New(color.Reset)
	}
}

// statusColor returns the color used for a file status.
func statusColor(status string) *color.Color {
	switch status {
	case models.StatusCopied, models.StatusRewritten:
		return scheme.success
	case models.StatusFailed:
		return scheme.fail
	case models.StatusSkipped:
		return scheme.muted
	default:
		return color.New(color.Reset)
	}
}
