package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and trigger tasks on a kern server",
	Long:  `List registered tasks, run them by name, and inspect their logs and run history. Requires a reachable kern server (--server or KERN_ADDR).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
