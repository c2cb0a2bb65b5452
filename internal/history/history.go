// Package history persists benchmark runs in a local SQLite database so
// results can be compared across server versions and deployments.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rgrandy/pybox/internal/bench"
)

// Store is a SQLite-backed archive of benchmark reports.
type Store struct {
	db *sql.DB
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID         string
	ServerURL  string
	StartedAt  time.Time
	FinishedAt time.Time
	Iterations int
	Scenarios  int
}

// Open creates or opens the database at path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveReport stores a run and all of its per-scenario aggregates.
func (s *Store) SaveReport(ctx context.Context, report *bench.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bench_runs (id, server_url, started_at, finished_at, iterations)
		VALUES (?, ?, ?, ?, ?)`,
		report.RunID, report.ServerURL,
		report.StartedAt.Format(time.RFC3339), report.FinishedAt.Format(time.RFC3339),
		report.Iterations,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, res := range report.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bench_results (
				run_id, name, category, iterations, successes, failures,
				latency_min_ms, latency_max_ms, latency_mean_ms, latency_stddev_ms,
				server_mean_ms, overhead_mean_ms
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, res.Name, res.Category, res.Iterations, res.Successes, res.Failures,
			res.LatencyMin, res.LatencyMax, res.LatencyMean, res.LatencyStddev,
			res.ServerMean, res.OverheadMean,
		)
		if err != nil {
			return fmt.Errorf("inserting result %s: %w", res.Name, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.server_url, r.started_at, r.finished_at, r.iterations,
		       (SELECT COUNT(*) FROM bench_results b WHERE b.run_id = r.id)
		FROM bench_runs r
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var started, finished string
		if err := rows.Scan(&run.ID, &run.ServerURL, &started, &finished, &run.Iterations, &run.Scenarios); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Results returns the per-scenario aggregates for one run.
func (s *Store) Results(ctx context.Context, runID string) ([]bench.Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category, iterations, successes, failures,
		       latency_min_ms, latency_max_ms, latency_mean_ms, latency_stddev_ms,
		       server_mean_ms, overhead_mean_ms
		FROM bench_results WHERE run_id = ? ORDER BY category, name`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	defer rows.Close()

	var results []bench.Result
	for rows.Next() {
		var res bench.Result
		if err := rows.Scan(&res.Name, &res.Category, &res.Iterations, &res.Successes, &res.Failures,
			&res.LatencyMin, &res.LatencyMax, &res.LatencyMean, &res.LatencyStddev,
			&res.ServerMean, &res.OverheadMean); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
