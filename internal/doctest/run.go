package doctest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rgrandy/pybox/pkg/pybox"
)

// Outcome is the verdict for one example.
type Outcome struct {
	File    string
	Example Example
	Passed  bool
	// Detail explains a failure: non-zero exit, terminal status, or the
	// transport error.
	Detail string
}

// Runner validates documentation examples against a service.
type Runner struct {
	client *pybox.Client
	logger *slog.Logger
}

func NewRunner(client *pybox.Client, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{client: client, logger: logger}
}

// CheckFile extracts and executes every example in one markdown file.
//
// TODO: support rewriting expected-output blocks in place (an --update mode)
// the way the service's own docs pipeline does.
func (r *Runner) CheckFile(ctx context.Context, path string) ([]Outcome, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var outcomes []Outcome
	for _, ex := range Extract(string(content)) {
		r.logger.Info("checking example", "file", path, "line", ex.StartLine)
		outcomes = append(outcomes, r.check(ctx, path, ex))
	}
	return outcomes, nil
}

func (r *Runner) check(ctx context.Context, path string, ex Example) Outcome {
	outcome := Outcome{File: path, Example: ex}

	result, err := r.client.ExecuteSync(ctx, pybox.Files{"main.py": ex.Code})
	switch {
	case err != nil:
		outcome.Detail = err.Error()
	case result.Status != pybox.StatusCompleted:
		outcome.Detail = fmt.Sprintf("status %s: %s", result.Status, result.Error)
	case result.ExitCode != 0:
		outcome.Detail = fmt.Sprintf("exit code %d: %s", result.ExitCode, result.Stderr)
	default:
		outcome.Passed = true
	}
	return outcome
}
