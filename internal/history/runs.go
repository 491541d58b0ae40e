package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/verprep/internal/models"
)

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRunID is returned when a run ID prefix matches several runs.
var ErrAmbiguousRunID = errors.New("ambiguous run id prefix")

// RunRecord represents a stored run
type RunRecord struct {
	ID            string
	Goal          string
	TargetVersion int
	DryRun        bool
	StartedAt     time.Time
	DurationMs    int64
	Total         int
	Written       int
	Skipped       int
	Failed        int
}

// FileRecord represents a stored per-file outcome
type FileRecord struct {
	ID           int64
	RunID        string
	Seq          int
	Source       string
	Destination  string
	Status       string
	Reason       string
	ErrorMessage string
	DurationMs   int64
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun stores a run and all of its file results in one transaction.
// A result without a RunID is assigned one; the ID used is returned.
func (s *Store) RecordRun(ctx context.Context, result models.RunResult) (string, error) {
	id := result.RunID
	if id == "" {
		id = NewRunID()
	}

	written, skipped, failed := result.Counts()
	started := result.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, goal, target_version, dry_run, started_at, duration_ms, total, written, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(result.Goal), result.TargetVersion, result.DryRun, started.UTC(),
		result.Duration.Milliseconds(), len(result.Files), written, skipped, failed,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_results (run_id, seq, source, destination, status, reason, error_message, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range result.Files {
		var errMsg string
		if f.Error != nil {
			errMsg = f.Error.Error()
		}
		if _, err := stmt.ExecContext(ctx, id, i, f.Source, f.Destination, f.Status, f.Reason, errMsg, f.Duration.Milliseconds()); err != nil {
			return "", fmt.Errorf("insert file result %s: %w", f.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// RecentRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `
		SELECT id, goal, target_version, dry_run, started_at, duration_ms, total, written, skipped, failed
		FROM runs
		ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by its full ID or a unique ID prefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*RunRecord, error) {
	if idOrPrefix == "" {
		return nil, ErrRunNotFound
	}

	query := `
		SELECT id, goal, target_version, dry_run, started_at, duration_ms, total, written, skipped, failed
		FROM runs WHERE id = ?`
	arg := idOrPrefix
	if _, err := uuid.Parse(idOrPrefix); err != nil {
		query = `
		SELECT id, goal, target_version, dry_run, started_at, duration_ms, total, written, skipped, failed
		FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`
		arg = escapeLike(idOrPrefix) + "%"
	}

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var found []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrRunNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", idOrPrefix, ErrAmbiguousRunID)
	}
}

// FilesForRun returns the file results of a run in processing order.
func (s *Store) FilesForRun(ctx context.Context, runID string) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, seq, source, COALESCE(destination, ''), status,
		       COALESCE(reason, ''), COALESCE(error_message, ''), duration_ms
		FROM file_results
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query file results: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		f := &FileRecord{}
		if err := rows.Scan(&f.ID, &f.RunID, &f.Seq, &f.Source, &f.Destination, &f.Status, &f.Reason, &f.ErrorMessage, &f.DurationMs); err != nil {
			return nil, fmt.Errorf("scan file result: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// Prune keeps the newest keep runs and deletes the rest with their file
// results. It returns the number of runs removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0, got %d", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	const stale = `
		SELECT id FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_results WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("delete file results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	r := &RunRecord{}
	if err := row.Scan(&r.ID, &r.Goal, &r.TargetVersion, &r.DryRun, &r.StartedAt,
		&r.DurationMs, &r.Total, &r.Written, &r.Skipped, &r.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
