package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/verprep/internal/models"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name      string
		dbPath    func(t *testing.T) string
		wantError bool
	}{
		{
			name: "creates new database in temp directory",
			dbPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "runs.db")
			},
		},
		{
			name: "creates in-memory database",
			dbPath: func(t *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "creates nested directories",
			dbPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b", "runs.db")
			},
		},
		{
			name: "fails for path under a regular file",
			dbPath: func(t *testing.T) string {
				return "/dev/null/runs.db"
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath(t))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
		})
	}
}

func TestApplyMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.ApplyMigrations(context.Background()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	version, err := reopened.GetLatestVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion(), version)
}

func TestNewStore_RejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	_, err = store.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, SchemaVersion()+1)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewStore(dbPath)
	require.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestSchemaRecordsSkipReason(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.db.Query(`SELECT name FROM pragma_table_info('file_results')`)
	require.NoError(t, err)
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, columns, "reason")
}

func sampleRun(id string, started time.Time) models.RunResult {
	return models.RunResult{
		RunID:         id,
		Goal:          models.GoalCopy,
		TargetVersion: 150,
		StartedAt:     started,
		Duration:      1200 * time.Millisecond,
		Files: []models.FileResult{
			{Source: "/src/A.jtmpl", Destination: "/out/A.java", Status: models.StatusCopied, Duration: 3 * time.Millisecond},
			{Source: "/src/B.jtmpl", Status: models.StatusSkipped, Reason: "not eligible for version 150"},
			{Source: "/src/C.jtmpl", Status: models.StatusFailed, Error: errors.New("line 2: malformed version condition")},
		},
	}
}

func TestRecordRunAndFiles(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id, err := store.RecordRun(ctx, sampleRun("", started))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "copy", run.Goal)
	assert.Equal(t, 150, run.TargetVersion)
	assert.False(t, run.DryRun)
	assert.True(t, run.StartedAt.Equal(started))
	assert.Equal(t, int64(1200), run.DurationMs)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, 1, run.Written)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Failed)

	files, err := store.FilesForRun(ctx, id)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "/src/A.jtmpl", files[0].Source)
	assert.Equal(t, "/out/A.java", files[0].Destination)
	assert.Equal(t, int64(3), files[0].DurationMs)
	assert.Equal(t, "", files[1].Destination)
	assert.Equal(t, "not eligible for version 150", files[1].Reason)
	assert.Equal(t, models.StatusFailed, files[2].Status)
	assert.Equal(t, "line 2: malformed version condition", files[2].ErrorMessage)
}

func TestRecordRunKeepsGivenID(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	want := NewRunID()
	got, err := store.RecordRun(context.Background(), sampleRun(want, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = store.RecordRun(context.Background(), sampleRun(want, time.Now()))
	assert.Error(t, err, "duplicate run id must be rejected")
}

func TestGetRunByPrefix(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.RecordRun(ctx, sampleRun("aaaa1111-0000-0000-0000-000000000000", time.Now()))
	require.NoError(t, err)
	_, err = store.RecordRun(ctx, sampleRun("aaaa2222-0000-0000-0000-000000000000", time.Now()))
	require.NoError(t, err)

	run, err := store.GetRun(ctx, "aaaa1")
	require.NoError(t, err)
	assert.Equal(t, "aaaa1111-0000-0000-0000-000000000000", run.ID)

	_, err = store.GetRun(ctx, "aaaa")
	assert.ErrorIs(t, err, ErrAmbiguousRunID)

	_, err = store.GetRun(ctx, "ffff")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = store.GetRun(ctx, "%")
	assert.ErrorIs(t, err, ErrRunNotFound, "LIKE wildcards are matched literally")

	_, err = store.GetRun(ctx, "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRecentRunsOrderAndLimit(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := store.RecordRun(ctx, sampleRun("", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[3], runs[0].ID)
	assert.Equal(t, ids[2], runs[1].ID)

	all, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPrune(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := store.RecordRun(ctx, sampleRun("", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	removed, err := store.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	runs, err := store.RecentRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[4], runs[0].ID)

	files, err := store.FilesForRun(ctx, ids[0])
	require.NoError(t, err)
	assert.Empty(t, files, "file results of pruned runs are removed")

	removed, err = store.Prune(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.Prune(ctx, -1)
	assert.Error(t, err)
}
