// Package storage keeps an optional local history of benchmark runs in an
// embedded sqlite database, so scaling numbers can be compared across runs
// without re-parsing artifact files.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/pbip-bench/runner/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS benchmark_runs (
	run_id         TEXT PRIMARY KEY,
	test_name      TEXT NOT NULL,
	timestamp      TEXT NOT NULL,
	scaling_factor REAL NOT NULL,
	table_growth   REAL NOT NULL,
	classification TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS benchmark_samples (
	run_id    TEXT NOT NULL REFERENCES benchmark_runs(run_id),
	operation TEXT NOT NULL,
	tier      TEXT NOT NULL,
	time_ms   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_samples_run ON benchmark_samples(run_id);
`

// RunRecord is one row of run history.
type RunRecord struct {
	RunID          string
	TestName       string
	Timestamp      string
	ScalingFactor  float64
	TableGrowth    float64
	Classification string
}

// HistoryStore persists benchmark runs to sqlite.
type HistoryStore struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens (creating if needed) the history database at path.
func Open(path string, log logrus.FieldLogger) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &HistoryStore{
		db:  db,
		log: log.WithField("component", "history"),
	}, nil
}

// SaveRun stores a run and all its samples in one transaction.
func (h *HistoryStore) SaveRun(result *types.BenchmarkResult) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO benchmark_runs (run_id, test_name, timestamp, scaling_factor, table_growth, classification)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.TestName, result.Timestamp,
		result.Summary.ScalingFactor, result.Summary.TableGrowth, result.Summary.Classification,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO benchmark_samples (run_id, operation, tier, time_ms) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range result.Samples {
		if _, err := stmt.Exec(result.RunID, s.Operation, s.Tier, s.TimeMs); err != nil {
			return fmt.Errorf("failed to insert sample %s: %w", s.Label(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"samples": len(result.Samples),
	}).Info("Run recorded in history")
	return nil
}

// ListRuns returns the most recent runs for a test, newest first.
func (h *HistoryStore) ListRuns(testName string, limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(
		`SELECT run_id, test_name, timestamp, scaling_factor, table_growth, classification
		 FROM benchmark_runs WHERE test_name = ? ORDER BY timestamp DESC LIMIT ?`,
		testName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.TestName, &r.Timestamp, &r.ScalingFactor, &r.TableGrowth, &r.Classification); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}
