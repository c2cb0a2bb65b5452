package bench

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JSON renders the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

// Markdown renders the report as a results table per category.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benchmark results\n\n")
	fmt.Fprintf(&b, "- Server: %s\n", r.ServerURL)
	fmt.Fprintf(&b, "- Started: %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "- Iterations per scenario: %d\n\n", r.Iterations)

	var category string
	for _, res := range r.Results {
		if res.Category != category {
			category = res.Category
			fmt.Fprintf(&b, "## %s\n\n", category)
			fmt.Fprintf(&b, "| Scenario | OK | Mean (ms) | Min | Max | Stddev | Server (ms) | Overhead (ms) |\n")
			fmt.Fprintf(&b, "|---|---|---|---|---|---|---|---|\n")
		}
		fmt.Fprintf(&b, "| %s | %d/%d | %.1f | %.1f | %.1f | %.1f | %.1f | %.1f |\n",
			res.Name, res.Successes, res.Iterations,
			res.LatencyMean, res.LatencyMin, res.LatencyMax, res.LatencyStddev,
			res.ServerMean, res.OverheadMean)
	}

	var failed []Result
	for _, res := range r.Results {
		if res.Failures > 0 {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n## Failures\n\n")
		for _, res := range failed {
			for _, e := range res.Errors {
				fmt.Fprintf(&b, "- %s: %s\n", res.Name, e)
			}
		}
	}

	return b.String()
}
