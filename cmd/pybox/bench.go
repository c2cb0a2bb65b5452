package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/bench"
	"github.com/rgrandy/pybox/internal/history"
)

var (
	benchIterations int
	benchCategories string
	benchQuick      bool
	benchScenarios  string
	benchJSONOut    string
	benchMDOut      string
	benchList       bool
	benchNoHistory  bool
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the benchmark suite against the server",
	Long: `Measure server performance with a set of standard scenarios.

Each scenario runs several iterations; client latency is compared with the
server-reported duration to expose transport and queueing overhead.
Results are printed as a markdown table and saved to the local history
database for later comparison.

Examples:
  pybox bench
  pybox bench --categories basic,async --iterations 5
  pybox bench --quick --output-json results.json
  pybox bench --scenarios extra.yaml`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 0, "Iterations per scenario (overrides config)")
	benchCmd.Flags().StringVar(&benchCategories, "categories", "", "Comma-separated categories to run (default: all)")
	benchCmd.Flags().BoolVar(&benchQuick, "quick", false, "One iteration, skip slow scenarios")
	benchCmd.Flags().StringVar(&benchScenarios, "scenarios", "", "YAML file with extra scenarios")
	benchCmd.Flags().StringVar(&benchJSONOut, "output-json", "", "Write the report as JSON to this file")
	benchCmd.Flags().StringVar(&benchMDOut, "output-markdown", "", "Write the report as markdown to this file")
	benchCmd.Flags().BoolVar(&benchList, "list", false, "List scenarios and exit")
	benchCmd.Flags().BoolVar(&benchNoHistory, "no-history", false, "Skip saving to the history database")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	scenarios := bench.Builtin()
	if benchScenarios != "" {
		extra, err := bench.LoadFile(benchScenarios)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, extra...)
	}

	var categories []string
	if benchCategories != "" {
		categories = strings.Split(benchCategories, ",")
	}
	scenarios = bench.Filter(scenarios, categories, benchQuick)

	if benchList {
		for _, sc := range scenarios {
			fmt.Printf("%-24s %-10s %s\n", sc.Name, sc.Category, sc.Description)
		}
		return nil
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios match the given categories")
	}

	iterations := benchIterations
	if iterations <= 0 {
		iterations = cfg.Bench.Iterations
	}
	if benchQuick {
		iterations = 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner := bench.NewRunner(client, cfg.Server, iterations, cfg.PollInterval, logger)

	report, err := runner.Run(cmd.Context(), scenarios)
	if err != nil {
		return err
	}

	fmt.Print(report.Markdown())

	if benchJSONOut != "" {
		data, err := report.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(benchJSONOut, data, 0o644); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
	}
	if benchMDOut != "" {
		if err := os.WriteFile(benchMDOut, []byte(report.Markdown()), 0o644); err != nil {
			return fmt.Errorf("writing markdown report: %w", err)
		}
	}

	if !benchNoHistory {
		store, err := history.Open(cfg.Bench.HistoryPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		if err := store.SaveReport(cmd.Context(), report); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		fmt.Fprintf(os.Stderr, "saved run %s to %s\n", report.RunID, cfg.Bench.HistoryPath)
	}

	return nil
}
