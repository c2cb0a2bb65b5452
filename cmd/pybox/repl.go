package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/rgrandy/pybox/pkg/pybox"
)

var pythonVersionFlag string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive evaluation against the server",
	Long: `Start an interactive loop that evaluates snippets on the server.

If the last statement of a snippet is an expression, its value is printed
REPL style. Each snippet runs in a fresh sandbox: no state is carried
between lines.

A line ending in ":" or "\" starts a multi-line block; finish it with an
empty line.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().StringVar(&pythonVersionFlag, "python", "", "Python version (e.g. 3.12, server default otherwise)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	fmt.Printf("Pybox REPL - server %s\n", cfg.Server)
	fmt.Println("Each snippet runs in a fresh sandbox. Type /quit to exit.")
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     "/tmp/pybox_repl_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		input = strings.TrimRight(input, " ")
		if strings.TrimSpace(input) == "" {
			continue
		}

		switch strings.TrimSpace(input) {
		case "/quit", "/exit", "/q":
			return nil
		case "/help":
			fmt.Println("Commands:")
			fmt.Println("  /help  - Show this help")
			fmt.Println("  /quit  - Exit")
			fmt.Println()
			continue
		}

		code, err := readBlock(rl, input)
		if err != nil {
			return err
		}

		result, err := client.Eval(cmd.Context(), &pybox.EvalRequest{
			Code:          code,
			PythonVersion: pythonVersionFlag,
			EvalLastExpr:  true,
		})
		if err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}

		printResult(result)
		if result.Result != nil {
			fmt.Println(*result.Result)
		}
	}
}

// readBlock collects continuation lines for a multi-line statement.
func readBlock(rl *readline.Instance, first string) (string, error) {
	lines := []string{first}
	if !strings.HasSuffix(first, ":") && !strings.HasSuffix(first, "\\") {
		return first, nil
	}

	rl.SetPrompt("... ")
	defer rl.SetPrompt(">>> ")

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
