package pybox

import "time"

// Status is the lifecycle state of a remote execution.
type Status string

const (
	// StatusPending means the execution is queued but has not started.
	StatusPending Status = "pending"
	// StatusRunning means the execution is in progress.
	StatusRunning Status = "running"
	// StatusCompleted means the execution finished; check ExitCode for success.
	StatusCompleted Status = "completed"
	// StatusFailed means the execution failed due to an internal service error.
	StatusFailed Status = "failed"
	// StatusKilled means the execution was terminated on request.
	StatusKilled Status = "killed"
)

// IsTerminal reports whether no further status transition can occur.
// Non-terminal statuses carry no ordering guarantee: a poll may observe
// pending after running, and callers must tolerate that.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusKilled
}

// Metadata is the structured side-channel document that accompanies an
// archive on submission. Entrypoint is the only required field; the JSON
// field names are a service contract and unset optional fields are omitted
// from the wire document entirely.
type Metadata struct {
	// Entrypoint is the archive member to execute.
	Entrypoint string `json:"entrypoint"`
	// DockerImage overrides the runtime image (server default otherwise).
	DockerImage string `json:"docker_image,omitempty"`
	// RequirementsTxt is the contents of a requirements.txt to install first.
	RequirementsTxt string `json:"requirements_txt,omitempty"`
	// PreCommands are shell commands run before the entrypoint.
	PreCommands []string `json:"pre_commands,omitempty"`
	// Stdin is data provided on standard input.
	Stdin string `json:"stdin,omitempty"`
	// Config holds resource limits and policy settings.
	Config *ExecutionConfig `json:"config,omitempty"`
	// EnvVars are environment assignments in "KEY=value" form.
	EnvVars []string `json:"env_vars,omitempty"`
	// ScriptArgs are arguments passed to the program (sys.argv).
	ScriptArgs []string `json:"script_args,omitempty"`
}

// ExecutionConfig holds resource limits and execution policy. Zero values
// mean "use the server default" and are omitted from the wire document.
type ExecutionConfig struct {
	// TimeoutSeconds bounds the execution itself (server default: 300).
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	// NetworkDisabled cuts network access (server default: true).
	NetworkDisabled bool `json:"network_disabled,omitempty"`
	// MemoryMB is the memory limit in megabytes (server default: 1024).
	MemoryMB int `json:"memory_mb,omitempty"`
	// DiskMB is the disk limit in megabytes (server default: 2048).
	DiskMB int `json:"disk_mb,omitempty"`
	// CPUShares is the relative CPU weight (server default: 1024).
	CPUShares int `json:"cpu_shares,omitempty"`
}

// ExecutionResult is the service's view of one execution. While the status
// is non-terminal only a subset of fields is populated.
type ExecutionResult struct {
	ExecutionID string `json:"execution_id"`
	Status      Status `json:"status"`
	Stdout      string `json:"stdout,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
	ExitCode    int    `json:"exit_code"`
	// Error is set when the service itself failed to run the code.
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	ErrorLine int    `json:"error_line,omitempty"`
	// Timestamps are RFC 3339 UTC on the wire.
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs int64      `json:"duration_ms,omitempty"`
	// Result is the repr of the last expression when eval mode is on,
	// or nil when the last statement was not an expression.
	Result *string `json:"result,omitempty"`
}

// AsyncResponse is the acknowledgement returned by an async submission.
type AsyncResponse struct {
	ExecutionID string `json:"execution_id"`
}

// KillResponse is returned when an execution is terminated.
type KillResponse struct {
	Status string `json:"status"`
}

// EvalRequest is the JSON-only request for the eval endpoint, which skips
// archive construction for quick single-snippet execution.
type EvalRequest struct {
	// Code becomes the content of main.py when Files is empty.
	Code string `json:"code,omitempty"`
	// Files allows multiple named files; takes precedence over Code.
	Files []EvalFile `json:"files,omitempty"`
	// Entrypoint defaults to "main.py" on the server.
	Entrypoint string           `json:"entrypoint,omitempty"`
	Stdin      string           `json:"stdin,omitempty"`
	Config     *ExecutionConfig `json:"config,omitempty"`
	// PythonVersion selects the interpreter (e.g. "3.12"); server default otherwise.
	PythonVersion string `json:"python_version,omitempty"`
	// EvalLastExpr captures the value of a trailing expression in Result.
	EvalLastExpr bool `json:"eval_last_expr,omitempty"`
}

// EvalFile is one named file in an EvalRequest.
type EvalFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
