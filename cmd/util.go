package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"

	"github.com/venlin/kern/pkg/client"
)

var (
	greenCheck = color.GreenString("✓")
	redCross   = color.RedString("✗")
)

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

// getClient builds a client for the configured remote server. The token,
// if any, comes from the environment only.
func getClient() (*client.Client, error) {
	server := kernAddr // prio 1: command-line flag
	if server == "" {
		server = viper.GetString(KernAddrKey) // prio 2: config/env
	}
	if server == "" {
		server = "localhost:8080"
	}

	var opts []client.Option
	if token := os.Getenv("KERN_TOKEN"); token != "" {
		opts = append(opts, client.WithAuthToken(token))
	}

	return client.New(server, opts...), nil
}

func applyTableFormat(t table.Writer) {
	style := table.StyleRounded
	style.Format.Header = 0 // keep header casing as written
	t.SetStyle(style)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
