package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bkyoung/quality-gate/internal/domain"
)

// Run is one recorded quality-gate evaluation of a repository.
type Run struct {
	RunID           string
	Timestamp       time.Time
	Repository      string
	BaseRef         string
	HeadRef         string
	Passed          bool
	CoveragePercent float64
	Gates           []domain.GateResult
}

// Store persists gate runs using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each gate run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		head_ref TEXT NOT NULL,
		passed INTEGER NOT NULL,
		coverage_percent REAL DEFAULT 0.0
	);

	-- Individual gate outcomes for each run
	CREATE TABLE IF NOT EXISTS gate_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		passed INTEGER NOT NULL,
		details TEXT,
		exit_code INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_gate_results_run ON gate_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun stores a run and its gate outcomes atomically.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, timestamp, repository, base_ref, head_ref, passed, coverage_percent)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Timestamp.Unix(),
		run.Repository,
		run.BaseRef,
		run.HeadRef,
		boolToInt(run.Passed),
		run.CoveragePercent,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, gate := range run.Gates {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO gate_results (run_id, name, passed, details, exit_code)
			 VALUES (?, ?, ?, ?, ?)`,
			run.RunID,
			gate.Name,
			boolToInt(gate.Passed),
			gate.Details,
			gate.ExitCode,
		)
		if err != nil {
			return fmt.Errorf("failed to save gate result %q: %w", gate.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves a run and its gate outcomes by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, head_ref, passed, coverage_percent
		FROM runs
		WHERE run_id = ?
	`

	var run Run
	var timestamp int64
	var passed int

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Repository,
		&run.BaseRef,
		&run.HeadRef,
		&passed,
		&run.CoveragePercent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	run.Passed = passed != 0

	gates, err := s.gatesForRun(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	run.Gates = gates

	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
// Gate outcomes are not loaded; use GetRun for the full record.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, head_ref, passed, coverage_percent
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var timestamp int64
		var passed int

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.Repository,
			&run.BaseRef,
			&run.HeadRef,
			&passed,
			&run.CoveragePercent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		run.Passed = passed != 0
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

func (s *Store) gatesForRun(ctx context.Context, runID string) ([]domain.GateResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, passed, details, exit_code FROM gate_results WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate results: %w", err)
	}
	defer rows.Close()

	var gates []domain.GateResult
	for rows.Next() {
		var gate domain.GateResult
		var passed int
		if err := rows.Scan(&gate.Name, &passed, &gate.Details, &gate.ExitCode); err != nil {
			return nil, fmt.Errorf("failed to scan gate result: %w", err)
		}
		gate.Passed = passed != 0
		gates = append(gates, gate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gate results: %w", err)
	}

	return gates, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
