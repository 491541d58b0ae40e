package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/harrison/verprep/internal/filelock"
	"github.com/harrison/verprep/internal/fileutil"
	"github.com/harrison/verprep/internal/models"
)

// LockFileName is the run lock created inside Options.StateDir.
const LockFileName = "run.lock"

// Logger receives progress events for a run.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogRunStart(goal models.Goal, total int)
	LogFileResult(result models.FileResult)
	LogSummary(result models.RunResult)
}

// Recorder persists finished runs.
type Recorder interface {
	RecordRun(ctx context.Context, result models.RunResult) (string, error)
}

// Preprocessor runs the copy and replace goals.
type Preprocessor struct {
	logger   Logger
	recorder Recorder
}

// NewPreprocessor creates a Preprocessor. A nil logger discards events and a
// nil recorder disables history.
func NewPreprocessor(logger Logger, recorder Recorder) *Preprocessor {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Preprocessor{
		logger:   logger,
		recorder: recorder,
	}
}

// job is one resolved source file and its destination.
type job struct {
	source string
	dest   string
}

// processFunc handles one job. ctx is cancelled once the run stops
// launching jobs. It never returns a zero Status.
type processFunc func(ctx context.Context, j job) models.FileResult

// execute runs the shared batch pipeline: lock, clean, collect, process,
// summarize and record.
func (p *Preprocessor) execute(ctx context.Context, goal models.Goal, opts *Options, collect func() ([]job, error), process processFunc) (*models.RunResult, error) {
	result := &models.RunResult{
		RunID:         uuid.NewString(),
		Goal:          goal,
		TargetVersion: opts.TargetVersion,
		DryRun:        opts.DryRun,
		StartedAt:     time.Now(),
	}

	if opts.StateDir != "" && !opts.DryRun {
		lock, err := filelock.Acquire(opts.StateDir, LockFileName)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		defer lock.Unlock()
		p.logger.LogDebug(fmt.Sprintf("holding run lock %s", lock.Path()))
	}

	if opts.Clean {
		if opts.DryRun {
			p.logger.LogInfo(fmt.Sprintf("dry run: would clean %s", opts.ToDir))
		} else {
			p.logger.LogInfo(fmt.Sprintf("cleaning %s", opts.ToDir))
			if err := fileutil.RemoveTree(opts.ToDir, false); err != nil {
				return nil, fmt.Errorf("clean destination: %w", err)
			}
		}
	}

	jobs, err := collect()
	if err != nil {
		return nil, err
	}

	p.logger.LogRunStart(goal, len(jobs))
	files, runErr := p.runJobs(ctx, goal, opts, jobs, process)
	result.Files = files
	result.Duration = time.Since(result.StartedAt)

	p.logger.LogSummary(*result)
	p.record(ctx, result)

	return result, runErr
}

// runJobs processes jobs on at most opts.Workers goroutines and returns the
// results of every processed job in job order.
func (p *Preprocessor) runJobs(ctx context.Context, goal models.Goal, opts *Options, jobs []job, process processFunc) ([]models.FileResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]models.FileResult, len(jobs))
	done := make([]bool, len(jobs))
	semaphore := make(chan struct{}, opts.Workers)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

launch:
	for i, j := range jobs {
		select {
		case <-runCtx.Done():
			break launch
		case semaphore <- struct{}{}:
		}
		// A slot freed by a failing worker is released only after cancel
		if runCtx.Err() != nil {
			<-semaphore
			break launch
		}

		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer func() { <-semaphore }()

			start := time.Now()
			res := process(runCtx, j)
			res.Duration = time.Since(start)

			mu.Lock()
			results[i] = res
			done[i] = true
			mu.Unlock()

			p.logger.LogFileResult(res)
			if res.Status == models.StatusFailed && !opts.ContinueOnError {
				cancel()
			}
		}(i, j)
	}
	wg.Wait()

	processed := make([]models.FileResult, 0, len(jobs))
	runErr := NewRunError(goal, len(jobs))
	for i, res := range results {
		if !done[i] {
			continue
		}
		processed = append(processed, res)
		if res.Status == models.StatusFailed {
			runErr.Add(asFileError(res))
		}
	}

	if err := ctx.Err(); err != nil {
		interrupted := fmt.Errorf("%s interrupted after %d/%d files: %w", goal, len(processed), len(jobs), err)
		if runErr.Failed > 0 {
			runErr.Aborted = len(processed) < len(jobs)
			return processed, errors.Join(interrupted, runErr)
		}
		return processed, interrupted
	}
	if runErr.Failed > 0 {
		runErr.Aborted = !opts.ContinueOnError && len(processed) < len(jobs)
		return processed, runErr
	}
	return processed, nil
}

func (p *Preprocessor) record(ctx context.Context, result *models.RunResult) {
	if p.recorder == nil {
		return
	}
	// Interrupted runs are recorded too
	if _, err := p.recorder.RecordRun(context.WithoutCancel(ctx), *result); err != nil {
		p.logger.LogWarn(fmt.Sprintf("failed to record run %s: %v", result.RunID, err))
	}
}

// excluded returns the first exclude pattern matching file, or "".
func excluded(opts *Options, file string) string {
	rel, err := filepath.Rel(opts.FromDir, file)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return pattern
		}
	}
	return ""
}

// buildJobs drops excluded and already seen files and derives destinations.
func (p *Preprocessor) buildJobs(opts *Options, files []string, seen map[string]bool, jobs []job) ([]job, error) {
	for _, file := range files {
		if seen[file] {
			continue
		}
		seen[file] = true

		if pattern := excluded(opts, file); pattern != "" {
			p.logger.LogDebug(fmt.Sprintf("excluded %s (%s)", file, pattern))
			continue
		}

		dest, err := fileutil.DestinationPath(opts.FromDir, opts.ToDir, file, opts.ToExt)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{source: file, dest: dest})
	}
	return jobs, nil
}

// sourcePattern matches files ending in "."+ext in the last segment of
// prefix. Regex metacharacters of ext are escaped; backslashes are doubled
// as the pattern language requires.
func sourcePattern(prefix, ext string) string {
	quoted := strings.ReplaceAll(regexp.QuoteMeta(ext), `\`, `\\`)
	name := `.*\\.` + quoted
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func failed(res models.FileResult, msg string, err error) models.FileResult {
	res.Status = models.StatusFailed
	res.Error = NewFileError(res.Source, msg, err)
	return res
}

func asFileError(res models.FileResult) *FileError {
	var fileErr *FileError
	if errors.As(res.Error, &fileErr) {
		return fileErr
	}
	return NewFileError(res.Source, "failed", res.Error)
}

type discardLogger struct{}

func (discardLogger) LogTrace(string) {}
func (discardLogger) LogDebug(string) {}
func (discardLogger) LogInfo(string) {}
func (discardLogger) LogWarn(string) {}
func (discardLogger) LogRunStart(models.Goal, int) {}
func (discardLogger) LogFileResult(models.FileResult) {}
func (discardLogger) LogSummary(models.RunResult) {}
