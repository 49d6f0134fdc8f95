package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tasksRunCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run a task synchronously",
	Long:  `Runs a task by name and prints its normalized result. Arguments are passed as repeated --arg key=value flags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "" {
			return fmt.Errorf("task name cannot be empty")
		}

		rawArgs, _ := cmd.Flags().GetStringArray("arg")
		taskArgs := make(map[string]string, len(rawArgs))
		for _, raw := range rawArgs {
			key, value, ok := strings.Cut(raw, "=")
			if !ok || key == "" {
				return fmt.Errorf("invalid argument '%s', expected key=value", raw)
			}
			taskArgs[key] = value
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Running task '%s'...", name)
		res, err := cli.RunTask(cmd.Context(), name, taskArgs)
		if err != nil {
			return fmt.Errorf("running task: %w", err)
		}

		if res.OK {
			log.Info().Msgf("%s task '%s' succeeded in %s", greenCheck, bold(name), res.Duration)
		} else {
			log.Warn().Msgf("%s task '%s' failed: %s", redCross, bold(name), res.Err)
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksRunCmd)

	tasksRunCmd.Flags().StringArray("arg", nil, "task argument as key=value (repeatable)")
}
