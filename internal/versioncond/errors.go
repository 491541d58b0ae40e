package versioncond

import (
	"fmt"
	"strings"
)

// ConditionError reports an eligibility line that carries the marker but
// cannot be evaluated.
type ConditionError struct {
	LineNo int    // 1-based line number, 0 when evaluating a single line
	Line   string // Offending line
	Reason string // Human-readable reason
	Err    error  // Underlying error (optional)
}

// NewConditionError creates a ConditionError for a single line.
func NewConditionError(line, reason string, err error) *ConditionError {
	return &ConditionError{
		Line:   line,
		Reason: reason,
		Err:    err,
	}
}

// Error implements the error interface for ConditionError.
func (e *ConditionError) Error() string {
	var sb strings.Builder
	if e.LineNo > 0 {
		sb.WriteString(fmt.Sprintf("line %d: ", e.LineNo))
	}
	sb.WriteString(fmt.Sprintf("invalid version condition: %s (condition=%q)", e.Reason, e.Line))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ConditionError) Unwrap() error {
	return e.Err
}

// DirectiveError reports a substitution token that survived rewriting.
// Rewriting itself never fails; this error is produced only by FindUnresolved
// callers that opt into strict checking.
type DirectiveError struct {
	LineNo int    // 1-based line number
	Token  string // Unresolved token, including the surrounding '@'
}

// Error implements the error interface for DirectiveError.
func (e *DirectiveError) Error() string {
	return fmt.Sprintf("line %d: unresolved version directive %s", e.LineNo, e.Token)
}
