package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var killCmd = &cobra.Command{
	Use:   "kill <execution-id>",
	Short: "Terminate a running execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		if err := client.Kill(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("killed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(killCmd)
}
