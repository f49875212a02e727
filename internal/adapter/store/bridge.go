package store

import (
	"context"

	"github.com/bkyoung/quality-gate/internal/adapter/store/sqlite"
	"github.com/bkyoung/quality-gate/internal/usecase/check"
)

// Bridge adapts the SQLite store to the check.RunStore interface.
// This avoids circular dependencies between packages.
type Bridge struct {
	store *sqlite.Store
}

// NewBridge creates a new store adapter.
func NewBridge(s *sqlite.Store) *Bridge {
	return &Bridge{store: s}
}

// SaveRun converts and saves a run record.
func (b *Bridge) SaveRun(ctx context.Context, run check.RunRecord) error {
	storeRun := sqlite.Run{
		RunID:           run.RunID,
		Timestamp:       run.Timestamp,
		Repository:      run.Repository,
		BaseRef:         run.BaseRef,
		HeadRef:         run.HeadRef,
		Passed:          run.Passed,
		CoveragePercent: run.CoveragePercent,
		Gates:           run.Gates,
	}
	return b.store.SaveRun(ctx, storeRun)
}
