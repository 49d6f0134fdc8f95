package client

import (
	"context"

	"github.com/venlin/kern/internal/api"
	"github.com/venlin/kern/internal/kernel"
)

// ListTasks retrieves every registered task and its status.
func (c *Client) ListTasks(ctx context.Context) ([]api.TaskStatus, error) {
	var res []api.TaskStatus
	err := c.get(ctx, c.url().
		setPath(api.ListTasksRoute).
		build(), &res)
	return res, err
}

// RunTask invokes a task synchronously and returns its normalized result.
// A Result with OK=false is not an error: the task ran and failed softly.
func (c *Client) RunTask(ctx context.Context, name string, args map[string]string) (kernel.Result, error) {
	b := c.url().
		setPath(api.RunTaskRoute).
		setPathParam("name", name)
	for key, value := range args {
		b.addQueryParam(key, value)
	}

	var res kernel.Result
	err := c.get(ctx, b.build(), &res)
	return res, err
}

// InvocationLogs groups the captured log lines of one run.
type InvocationLogs struct {
	InvocationID string            `json:"invocation_id"`
	Logs         []kernel.LogEntry `json:"logs"`
}

// TaskLogs retrieves the logs of the most recent runs of a task.
func (c *Client) TaskLogs(ctx context.Context, name string) ([]InvocationLogs, error) {
	var res []InvocationLogs
	err := c.get(ctx, c.url().
		setPath(api.LogsForTaskRoute).
		setPathParam("name", name).
		build(), &res)
	return res, err
}

// TaskHistory retrieves recent run records of a task.
func (c *Client) TaskHistory(ctx context.Context, name string) ([]kernel.RunRecord, error) {
	var res []kernel.RunRecord
	err := c.get(ctx, c.url().
		setPath(api.HistoryForTaskRoute).
		setPathParam("name", name).
		build(), &res)
	return res, err
}
