package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/internal/doctest"
)

var doctestCmd = &cobra.Command{
	Use:   "doctest <markdown-files...>",
	Short: "Execute Python examples from markdown docs against the server",
	Long: `Extract fenced python code blocks from markdown files and run each
one on the server, so documentation examples are known to work.

Blocks that are not standalone programs (import-only, bare definitions,
snippets with "..." placeholders) are skipped.

Example:
  pybox doctest README.md docs/*.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDoctest,
}

func init() {
	rootCmd.AddCommand(doctestCmd)
}

func runDoctest(cmd *cobra.Command, args []string) error {
	client, _, err := loadClient()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runner := doctest.NewRunner(client, logger)

	passed, failed := 0, 0
	for _, path := range args {
		outcomes, err := runner.CheckFile(cmd.Context(), path)
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			if o.Passed {
				passed++
				fmt.Printf("ok   %s:%d\n", o.File, o.Example.StartLine)
			} else {
				failed++
				fmt.Printf("FAIL %s:%d: %s\n", o.File, o.Example.StartLine, o.Detail)
			}
		}
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return fmt.Errorf("%d documentation example(s) failed", failed)
	}
	return nil
}
