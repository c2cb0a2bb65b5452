package history

import (
	"context"
	"testing"
	"time"

	"github.com/rgrandy/pybox/internal/bench"
)

func testReport(runID string, startedAt time.Time) *bench.Report {
	return &bench.Report{
		RunID:      runID,
		ServerURL:  "http://localhost:8080",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(30 * time.Second),
		Iterations: 3,
		Results: []bench.Result{
			{
				Name:        "basic_print",
				Category:    "basic",
				Iterations:  3,
				Successes:   3,
				LatencyMin:  10.5,
				LatencyMax:  14.0,
				LatencyMean: 12.0,
			},
			{
				Name:       "async_roundtrip",
				Category:   "async",
				Iterations: 3,
				Successes:  2,
				Failures:   1,
			},
		},
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	if err := store.SaveReport(ctx, testReport("run-1", started)); err != nil {
		t.Fatalf("save: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != "run-1" {
		t.Errorf("id = %q", run.ID)
	}
	if run.Scenarios != 2 {
		t.Errorf("scenarios = %d, want 2", run.Scenarios)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", run.StartedAt, started)
	}

	results, err := store.Results(ctx, "run-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Ordered by category then name.
	if results[0].Name != "async_roundtrip" || results[1].Name != "basic_print" {
		t.Errorf("order = %s, %s", results[0].Name, results[1].Name)
	}
	if results[1].LatencyMean != 12.0 {
		t.Errorf("latency mean = %v", results[1].LatencyMean)
	}
	if results[0].Failures != 1 {
		t.Errorf("failures = %d", results[0].Failures)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		report := testReport(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.SaveReport(ctx, report); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestResultsUnknownRun(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	results, err := store.Results(context.Background(), "nope")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for unknown run", len(results))
	}
}
