package history

import "database/sql"

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bench_runs (
    id          TEXT PRIMARY KEY,
    server_url  TEXT NOT NULL DEFAULT '',
    started_at  DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    iterations  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_bench_runs_started ON bench_runs(started_at DESC);

CREATE TABLE IF NOT EXISTS bench_results (
    run_id            TEXT NOT NULL REFERENCES bench_runs(id) ON DELETE CASCADE,
    name              TEXT NOT NULL,
    category          TEXT NOT NULL DEFAULT '',
    iterations        INTEGER NOT NULL DEFAULT 0,
    successes         INTEGER NOT NULL DEFAULT 0,
    failures          INTEGER NOT NULL DEFAULT 0,
    latency_min_ms    REAL NOT NULL DEFAULT 0,
    latency_max_ms    REAL NOT NULL DEFAULT 0,
    latency_mean_ms   REAL NOT NULL DEFAULT 0,
    latency_stddev_ms REAL NOT NULL DEFAULT 0,
    server_mean_ms    REAL NOT NULL DEFAULT 0,
    overhead_mean_ms  REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, name)
);
`

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	var current int
	row := db.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&current); err != nil {
		// Missing or empty table means a fresh database.
		current = 0
	}

	if current >= schemaVersion {
		return nil
	}

	if current < 1 {
		if _, err := db.Exec(schemaV1); err != nil {
			return err
		}
	}

	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}
