package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/quality-gate/internal/adapter/store/sqlite"
	"github.com/bkyoung/quality-gate/internal/domain"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestStore_SaveRun_GetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := sqlite.Run{
		RunID:           "run-123",
		Timestamp:       time.Now().Truncate(time.Second), // Truncate to avoid precision issues
		Repository:      "test-repo",
		BaseRef:         "main",
		HeadRef:         "feature",
		Passed:          false,
		CoveragePercent: 83,
		Gates: []domain.GateResult{
			{Name: "Coverage", Passed: true, Details: "83% >= 80%"},
			{Name: "Tests", Passed: false, Details: "2 of 10 tests failed", ExitCode: 1},
		},
	}

	err := s.SaveRun(ctx, run)
	require.NoError(t, err)

	retrieved, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, run.RunID, retrieved.RunID)
	assert.Equal(t, run.Repository, retrieved.Repository)
	assert.Equal(t, run.BaseRef, retrieved.BaseRef)
	assert.Equal(t, run.HeadRef, retrieved.HeadRef)
	assert.Equal(t, run.Passed, retrieved.Passed)
	assert.Equal(t, run.CoveragePercent, retrieved.CoveragePercent)
	assert.True(t, run.Timestamp.Equal(retrieved.Timestamp))
	assert.Equal(t, run.Gates, retrieved.Gates)
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorContains(t, err, "run not found")
}

func TestStore_SaveRun_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := sqlite.Run{RunID: "run-1", Timestamp: time.Now(), Repository: "repo", BaseRef: "main", HeadRef: "dev"}
	require.NoError(t, s.SaveRun(ctx, run))

	err := s.SaveRun(ctx, run)
	assert.Error(t, err, "duplicate run IDs must be rejected")
}

func TestStore_ListRuns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	runs := []sqlite.Run{
		{RunID: "run-1", Timestamp: now.Add(-2 * time.Hour), Repository: "repo", BaseRef: "main", HeadRef: "f1", Passed: true},
		{RunID: "run-2", Timestamp: now.Add(-1 * time.Hour), Repository: "repo", BaseRef: "main", HeadRef: "f2", Passed: false},
		{RunID: "run-3", Timestamp: now, Repository: "repo", BaseRef: "main", HeadRef: "f3", Passed: true},
	}
	for _, run := range runs {
		require.NoError(t, s.SaveRun(ctx, run))
	}

	listed, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Most recent first
	assert.Equal(t, "run-3", listed[0].RunID)
	assert.Equal(t, "run-2", listed[1].RunID)
}

func TestStore_CascadeDeletesGateResults(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := sqlite.Run{
		RunID:      "run-del",
		Timestamp:  time.Now(),
		Repository: "repo",
		BaseRef:    "main",
		HeadRef:    "dev",
		Gates:      []domain.GateResult{{Name: "Coverage", Passed: true, Details: "90% >= 80%"}},
	}
	require.NoError(t, s.SaveRun(ctx, run))

	retrieved, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Len(t, retrieved.Gates, 1)
}
