package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <file|directory|archive.tar> [-- script-args...]",
	Short: "Submit code asynchronously and print the execution ID",
	Long: `Submit Python code for execution and return immediately.

The printed execution ID is used with status, wait, and kill.

Examples:
  pybox submit longjob.py
  pybox submit ./pipeline --entrypoint etl/main.py`,
	Args: cobra.MinimumNArgs(1),
	RunE: submitExecution,
}

func init() {
	addExecFlags(submitCmd)
	rootCmd.AddCommand(submitCmd)
}

func submitExecution(cmd *cobra.Command, args []string) error {
	client, cfg, err := loadClient()
	if err != nil {
		return err
	}

	src, err := sourceFromArg(args[0])
	if err != nil {
		return err
	}

	opts, err := execOptionsFromFlags(cmd, cfg, args[1:])
	if err != nil {
		return err
	}

	id, err := client.ExecuteAsync(cmd.Context(), src, opts...)
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}
