package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksHistoryCmd = &cobra.Command{
	Use:   "history NAME",
	Short: "Show the run history of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return fmt.Errorf("task name cannot be empty")
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving history for task '%s'...", name)
		records, err := cli.TaskHistory(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("retrieving task history: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Invocation", "Trigger", "Started", "Duration", "Status", "Error"})

		for _, rec := range records {
			status := greenCheck + " " + rec.Status
			if rec.Status != "success" {
				status = redCross + " " + rec.Status
			}

			t.AppendRow(table.Row{
				faint(rec.InvocationID),
				rec.Trigger,
				rec.StartedAt.Format("15:04:05"),
				rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond).String(),
				status,
				truncate(rec.Error, 48),
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksHistoryCmd)
}
