package api

const (
	HealthCheckRoute = "/healthz"
	VersionRoute     = "/version"

	ListTasksRoute = "/tasks"
	RunTaskRoute   = "/run/{name}"

	TaskParent          = "/tasks/"
	LogsForTaskRoute    = TaskParent + "{name}/logs"
	HistoryForTaskRoute = TaskParent + "{name}/history"
)
