package models

import "time"

// Goal names a preprocessing goal
type Goal string

const (
	GoalCopy    Goal = "copy"
	GoalReplace Goal = "replace"
)

// File processing status constants
const (
	StatusCopied    = "COPIED"    // Eligible file copied to the output tree
	StatusRewritten = "REWRITTEN" // Markers resolved and file written
	StatusSkipped   = "SKIPPED"   // File not written (not eligible, excluded)
	StatusFailed    = "FAILED"    // File could not be processed
)

// FileResult represents the outcome of processing a single source file
type FileResult struct {
	Source      string        // Absolute source path
	Destination string        // Destination path, empty when skipped before derivation
	Status      string        // One of the Status* constants
	Reason      string        // Short explanation for SKIPPED results
	Error       error         // Error if processing failed
	Duration    time.Duration // Time taken to process the file
}

// Written reports whether the file produced (or in a dry run, would have
// produced) an output file.
func (r FileResult) Written() bool {
	return r.Status == StatusCopied || r.Status == StatusRewritten
}

// RunResult represents the aggregate result of one goal execution
type RunResult struct {
	RunID         string        // Unique run identifier
	Goal          Goal          // Goal that was executed
	TargetVersion int           // Version the output was specialized for
	DryRun        bool          // True when nothing was written
	StartedAt     time.Time     // Wall clock start of the run
	Duration      time.Duration // Total execution time
	Files         []FileResult  // Per-file results in resolution order
}

// Counts returns the number of files per outcome.
func (r *RunResult) Counts() (written, skipped, failed int) {
	for _, f := range r.Files {
		switch {
		case f.Written():
			written++
		case f.Status == StatusFailed:
			failed++
		default:
			skipped++
		}
	}
	return written, skipped, failed
}

// FailedFiles returns the results with StatusFailed.
func (r *RunResult) FailedFiles() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			failed = append(failed, f)
		}
	}
	return failed
}
