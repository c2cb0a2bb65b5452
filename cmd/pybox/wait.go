package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/pkg/pybox"
)

var (
	intervalFlag time.Duration
	maxWaitFlag  time.Duration
	killOnWait   bool
)

var waitCmd = &cobra.Command{
	Use:   "wait <execution-id>",
	Short: "Poll an execution until it finishes and print the output",
	Long: `Poll an async execution until it reaches a terminal state.

With --max-wait the command gives up after the given duration. The remote
execution keeps running unless --kill-on-timeout is also set.

Examples:
  pybox wait exe_123
  pybox wait exe_123 --interval 500ms --max-wait 2m --kill-on-timeout`,
	Args: cobra.ExactArgs(1),
	RunE: waitExecution,
}

func init() {
	waitCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "Poll interval (overrides config)")
	waitCmd.Flags().DurationVar(&maxWaitFlag, "max-wait", 0, "Give up after this long (0 = wait forever)")
	waitCmd.Flags().BoolVar(&killOnWait, "kill-on-timeout", false, "Kill the execution when --max-wait expires")
	rootCmd.AddCommand(waitCmd)
}

func waitExecution(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	interval := intervalFlag
	if interval <= 0 {
		interval = cfg.PollInterval
	}

	id := args[0]
	result, err := client.WaitForCompletion(cmd.Context(), id, interval, maxWaitFlag)
	if err != nil {
		var timeout *pybox.PollTimeoutError
		if errors.As(err, &timeout) && killOnWait {
			if killErr := client.Kill(cmd.Context(), id); killErr != nil {
				return fmt.Errorf("%w (kill failed: %v)", err, killErr)
			}
			return fmt.Errorf("%w (killed)", err)
		}
		return err
	}

	printResult(result)
	fmt.Fprintf(os.Stderr, "status: %s, exit code: %d\n", result.Status, result.ExitCode)
	return nil
}
