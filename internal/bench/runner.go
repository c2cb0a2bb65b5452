package bench

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rgrandy/pybox/pkg/pybox"
)

// Result is the aggregate for one scenario across all iterations.
type Result struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Iterations  int     `json:"iterations"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	LatencyMin  float64 `json:"latency_min_ms"`
	LatencyMax  float64 `json:"latency_max_ms"`
	LatencyMean float64 `json:"latency_mean_ms"`
	// LatencyStddev is the population standard deviation of client latency.
	LatencyStddev float64 `json:"latency_stddev_ms"`
	// ServerMean is the mean of the server-reported execution duration.
	ServerMean float64 `json:"server_duration_mean_ms"`
	// OverheadMean is the mean of client latency minus server duration.
	OverheadMean float64  `json:"overhead_mean_ms"`
	Errors       []string `json:"errors,omitempty"`
}

// Report is one complete benchmark run.
type Report struct {
	RunID      string    `json:"run_id"`
	ServerURL  string    `json:"server_url"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Iterations int       `json:"iterations_per_scenario"`
	Results    []Result  `json:"results"`
}

// Runner executes scenarios against one server.
type Runner struct {
	client       *pybox.Client
	serverURL    string
	iterations   int
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewRunner creates a runner. iterations <= 0 defaults to 3.
func NewRunner(client *pybox.Client, serverURL string, iterations int, pollInterval time.Duration, logger *slog.Logger) *Runner {
	if iterations <= 0 {
		iterations = 3
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:       client,
		serverURL:    serverURL,
		iterations:   iterations,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run executes every scenario r.iterations times and aggregates the samples.
// Individual iteration failures are recorded, not fatal; Run only returns an
// error when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		ServerURL:  r.serverURL,
		StartedAt:  time.Now().UTC(),
		Iterations: r.iterations,
	}

	for _, sc := range scenarios {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Info("running scenario", "name", sc.Name, "category", sc.Category, "iterations", r.iterations)
		report.Results = append(report.Results, r.runScenario(ctx, sc))
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

type sample struct {
	latency time.Duration
	server  time.Duration
	err     error
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario) Result {
	result := Result{
		Name:        sc.Name,
		Category:    sc.Category,
		Description: sc.Description,
		Iterations:  r.iterations,
	}

	var latencies, servers, overheads []float64
	for i := 0; i < r.iterations; i++ {
		s := r.runOnce(ctx, sc)
		if s.err != nil {
			result.Failures++
			result.Errors = append(result.Errors, s.err.Error())
			continue
		}
		result.Successes++
		latencies = append(latencies, float64(s.latency.Microseconds())/1000)
		if s.server > 0 {
			servers = append(servers, float64(s.server.Microseconds())/1000)
			overheads = append(overheads, float64((s.latency-s.server).Microseconds())/1000)
		}
	}

	if len(latencies) > 0 {
		result.LatencyMin = minOf(latencies)
		result.LatencyMax = maxOf(latencies)
		result.LatencyMean = mean(latencies)
		result.LatencyStddev = stddev(latencies)
	}
	if len(servers) > 0 {
		result.ServerMean = mean(servers)
		result.OverheadMean = mean(overheads)
	}
	return result
}

func (r *Runner) runOnce(ctx context.Context, sc Scenario) sample {
	opts := scenarioOptions(sc)
	src := pybox.Files(sc.Files)

	start := time.Now()
	var execResult *pybox.ExecutionResult
	var err error

	if sc.Async {
		var id string
		id, err = r.client.ExecuteAsync(ctx, src, opts...)
		if err == nil {
			execResult, err = r.client.WaitForCompletion(ctx, id, r.pollInterval, 0)
		}
	} else {
		execResult, err = r.client.ExecuteSync(ctx, src, opts...)
	}
	latency := time.Since(start)

	if err != nil {
		return sample{err: err}
	}
	return sample{
		latency: latency,
		server:  time.Duration(execResult.DurationMs) * time.Millisecond,
	}
}

func scenarioOptions(sc Scenario) []pybox.ExecOption {
	var opts []pybox.ExecOption
	if sc.Entrypoint != "" {
		opts = append(opts, pybox.WithEntrypoint(sc.Entrypoint))
	}
	if sc.Stdin != "" {
		opts = append(opts, pybox.WithStdin(sc.Stdin))
	}
	if sc.Requirements != "" {
		// An explicit network enable is not expressible on the wire
		// (network_disabled is omitted when false); install scenarios rely
		// on the server's policy for requests without a config document.
		opts = append(opts, pybox.WithRequirements(sc.Requirements))
	}
	return opts
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		sum += (x - m) * (x - m)
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
