package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/history"
)

var historyLimit int

var benchHistoryCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved benchmark runs, or show one run's results",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showBenchHistory,
}

func init() {
	benchHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list")
	benchCmd.AddCommand(benchHistoryCmd)
}

func showBenchHistory(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadClient()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.Bench.HistoryPath)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		results, err := store.Results(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("no results for run %s", args[0])
		}
		for _, res := range results {
			fmt.Printf("%-24s %-10s %d/%d mean=%.1fms stddev=%.1fms overhead=%.1fms\n",
				res.Name, res.Category, res.Successes, res.Iterations,
				res.LatencyMean, res.LatencyStddev, res.OverheadMean)
		}
		return nil
	}

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  %s  %d scenarios x%d\n",
			run.ID, run.StartedAt.Format(time.RFC3339), run.ServerURL,
			run.Scenarios, run.Iterations)
	}
	return nil
}
