package bench

import (
	"context"
	"math"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rgrandy/pybox/internal/stubserver"
	"github.com/rgrandy/pybox/pkg/pybox"
)

func TestStats(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := mean(xs); got != 5 {
		t.Errorf("mean = %v, want 5", got)
	}
	if got := stddev(xs); math.Abs(got-2) > 1e-9 {
		t.Errorf("stddev = %v, want 2", got)
	}
	if got := minOf(xs); got != 2 {
		t.Errorf("min = %v, want 2", got)
	}
	if got := maxOf(xs); got != 9 {
		t.Errorf("max = %v, want 9", got)
	}
}

func TestFilter(t *testing.T) {
	scenarios := []Scenario{
		{Name: "a", Category: "basic"},
		{Name: "b", Category: "basic", Slow: true},
		{Name: "c", Category: "async"},
	}

	got := Filter(scenarios, []string{"basic"}, false)
	if len(got) != 2 {
		t.Fatalf("category filter: got %d scenarios, want 2", len(got))
	}

	got = Filter(scenarios, nil, true)
	if len(got) != 2 {
		t.Fatalf("skipSlow: got %d scenarios, want 2", len(got))
	}
	for _, sc := range got {
		if sc.Slow {
			t.Errorf("slow scenario %s survived skipSlow", sc.Name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := `
- name: custom_hello
  description: custom scenario
  files:
    main.py: print('custom')
- name: custom_stdin
  category: io
  files:
    main.py: import sys; print(sys.stdin.read())
  stdin: "hello"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	scenarios, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	if scenarios[0].Category != "custom" {
		t.Errorf("default category = %q, want custom", scenarios[0].Category)
	}
	if scenarios[1].Stdin != "hello" {
		t.Errorf("stdin = %q", scenarios[1].Stdin)
	}
}

func TestLoadFileRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- name: no_files\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for scenario without files")
	}
}

func TestRunnerRun(t *testing.T) {
	stub := stubserver.New(stubserver.Config{
		StartDelay:  10 * time.Millisecond,
		RunDuration: 10 * time.Millisecond,
	})
	stub.SetRunFunc(func(stubserver.Submission) pybox.ExecutionResult {
		return pybox.ExecutionResult{Status: pybox.StatusCompleted, Stdout: "ok\n", DurationMs: 5}
	})
	ts := httptest.NewServer(stub.Handler())
	defer ts.Close()

	scenarios := []Scenario{
		{Name: "sync_one", Category: "basic", Files: map[string]string{"main.py": "print('ok')"}},
		{Name: "async_one", Category: "async", Files: map[string]string{"main.py": "print('ok')"}, Async: true},
	}

	runner := NewRunner(pybox.New(ts.URL), ts.URL, 2, 10*time.Millisecond, nil)
	report, err := runner.Run(context.Background(), scenarios)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.RunID == "" {
		t.Error("empty run ID")
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(report.Results))
	}
	for _, res := range report.Results {
		if res.Successes != 2 || res.Failures != 0 {
			t.Errorf("%s: successes=%d failures=%d %v", res.Name, res.Successes, res.Failures, res.Errors)
		}
		if res.LatencyMean <= 0 {
			t.Errorf("%s: latency mean %v", res.Name, res.LatencyMean)
		}
	}

	md := report.Markdown()
	for _, want := range []string{"sync_one", "async_one", "## basic", "## async"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestRequirementsScenarioSendsNoConfig(t *testing.T) {
	stub := stubserver.New(stubserver.Config{})
	ts := httptest.NewServer(stub.Handler())
	defer ts.Close()

	sc := Scenario{
		Name:         "reqs",
		Category:     "basic",
		Files:        map[string]string{"main.py": "import requests"},
		Requirements: "requests\n",
	}

	runner := NewRunner(pybox.New(ts.URL), ts.URL, 1, 10*time.Millisecond, nil)
	if _, err := runner.Run(context.Background(), []Scenario{sc}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	subs := stub.Submissions()
	if len(subs) != 1 {
		t.Fatalf("got %d submissions, want 1", len(subs))
	}
	if subs[0].Metadata.RequirementsTxt != "requests\n" {
		t.Errorf("requirements = %q", subs[0].Metadata.RequirementsTxt)
	}
	// A false NetworkDisabled is dropped by omitempty, so sending a config
	// document for it would be a no-op; none should be sent at all.
	if subs[0].Metadata.Config != nil {
		t.Errorf("config sent for requirements scenario: %+v", subs[0].Metadata.Config)
	}
}
