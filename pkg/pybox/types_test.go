package pybox

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStatusIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:   false,
		StatusRunning:   false,
		StatusCompleted: true,
		StatusFailed:    true,
		StatusKilled:    true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestMetadataJSONOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(&Metadata{Entrypoint: "main.py"})
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != `{"entrypoint":"main.py"}` {
		t.Errorf("minimal metadata JSON = %s", got)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("metadata JSON contains null: %s", data)
	}
}

func TestMetadataJSONFieldNames(t *testing.T) {
	meta := &Metadata{
		Entrypoint:      "main.py",
		DockerImage:     "python:3.12-slim",
		RequirementsTxt: "numpy",
		Stdin:           "in",
		Config:          &ExecutionConfig{MemoryMB: 256},
		EnvVars:         []string{"A=1"},
		ScriptArgs:      []string{"x"},
	}

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		`"entrypoint"`, `"docker_image"`, `"requirements_txt"`,
		`"stdin"`, `"config"`, `"memory_mb"`, `"env_vars"`, `"script_args"`,
	} {
		if !strings.Contains(string(data), key) {
			t.Errorf("metadata JSON missing %s: %s", key, data)
		}
	}
}

func TestExecutionResultDecodesWireJSON(t *testing.T) {
	wire := `{
		"execution_id": "exe_abc",
		"status": "completed",
		"stdout": "2\n",
		"exit_code": 0,
		"started_at": "2024-05-01T12:00:00Z",
		"finished_at": "2024-05-01T12:00:01Z",
		"duration_ms": 1000
	}`

	var result ExecutionResult
	if err := json.Unmarshal([]byte(wire), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.ExecutionID != "exe_abc" || result.Status != StatusCompleted {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.StartedAt == nil || !result.StartedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("StartedAt = %v", result.StartedAt)
	}
	if result.FinishedAt.Sub(*result.StartedAt) != time.Second {
		t.Errorf("timestamps disagree with duration: %v -> %v", result.StartedAt, result.FinishedAt)
	}
}
