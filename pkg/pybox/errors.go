package pybox

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidPath means a path source refers to neither a file nor a directory.
	ErrInvalidPath = errors.New("path is neither a file nor a directory")

	// ErrMissingInput means a submission had no source and no pre-built archive.
	ErrMissingInput = errors.New("no files or tar archive provided")

	// ErrNoEntrypoint means the archive contains no recognizable Python file
	// and no entrypoint was given.
	ErrNoEntrypoint = errors.New("no python files found in archive")

	// ErrNotFound means the execution ID is unknown to the service. This is
	// an expected outcome for stale handles, not an infrastructure fault.
	ErrNotFound = errors.New("execution not found")
)

// StatusError reports a non-success HTTP response from the service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// PollTimeoutError means WaitForCompletion gave up before observing a
// terminal status. The remote execution is left running; issue Kill if it
// should not continue.
type PollTimeoutError struct {
	ExecutionID string
	MaxWait     time.Duration
	Elapsed     time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("execution %s did not complete within %s (waited %s)",
		e.ExecutionID, e.MaxWait, e.Elapsed.Round(time.Millisecond))
}
