package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/venlin/kern/internal/api/presenter"
	"github.com/venlin/kern/internal/kernel"
)

// TaskStatus is the per-task view returned by the task listing. It joins
// the registry with the scheduler's live entries and the run history.
type TaskStatus struct {
	Name       string `json:"name"`
	Scheduled  bool   `json:"scheduled"`
	Interval   string `json:"interval,omitempty"`
	Running    bool   `json:"running"`
	LastRun    string `json:"last_run,omitempty"`
	LastResult string `json:"last_result,omitempty"`
	NextRun    string `json:"next_run,omitempty"`
}

// handleListTasks responds with every registered task and its status.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	names := s.registry.List()
	sort.Strings(names)

	statuses := make([]TaskStatus, 0, len(names))
	for _, name := range names {
		status := TaskStatus{Name: name}

		if entry, ok := s.scheduler.Entry(name); ok {
			status.Scheduled = true
			status.Interval = entry.Interval.String()
			status.Running = entry.Running
			if !entry.NextFire.IsZero() {
				status.NextRun = entry.NextFire.Format(time.RFC3339)
			}
		}

		if recs, err := s.history.ForTask(name, 1); err == nil && len(recs) > 0 {
			status.LastRun = recs[0].FinishedAt.Format(time.RFC3339)
			status.LastResult = recs[0].Status
		}

		statuses = append(statuses, status)
	}

	presenter.JSON(w, r, statuses, http.StatusOK)
}

// handleRunTask invokes a task synchronously. Query parameters become the
// invocation arguments. A failing handler still yields a 200 with the
// structured {"ok": false} body; only an unknown task is an HTTP error.
func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		presenter.Error(w, r, "missing task name", http.StatusBadRequest)
		return
	}

	args := kernel.Args{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}

	res, err := s.invoker.Run(r.Context(), name, args)
	if err != nil {
		var notFound kernel.TaskNotFoundError
		if errors.As(err, &notFound) {
			presenter.Error(w, r, err.Error(), http.StatusNotFound)
			return
		}
		presenter.Error(w, r, err.Error(), http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, res, http.StatusOK)
}

// handleLogsForTask returns the log lines of the most recent runs of a
// task, newest run first.
func (s *Server) handleLogsForTask(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.registry.Has(name) {
		presenter.Error(w, r, kernel.TaskNotFoundError{Name: name}.Error(), http.StatusNotFound)
		return
	}

	recs, err := s.history.ForTask(name, 10)
	if err != nil {
		presenter.Error(w, r, "failed to retrieve task logs", http.StatusInternalServerError)
		return
	}

	type invocationLogs struct {
		InvocationID string            `json:"invocation_id"`
		Logs         []kernel.LogEntry `json:"logs"`
	}
	out := make([]invocationLogs, 0, len(recs))
	for _, rec := range recs {
		out = append(out, invocationLogs{
			InvocationID: rec.InvocationID,
			Logs:         rec.Logs,
		})
	}

	presenter.JSON(w, r, out, http.StatusOK)
}

// handleHistoryForTask returns recent run records of a task.
func (s *Server) handleHistoryForTask(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.registry.Has(name) {
		presenter.Error(w, r, kernel.TaskNotFoundError{Name: name}.Error(), http.StatusNotFound)
		return
	}

	recs, err := s.history.ForTask(name, 0)
	if err != nil {
		presenter.Error(w, r, "failed to retrieve run history", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, recs, http.StatusOK)
}
