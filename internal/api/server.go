package api

import (
	"net/http"

	"github.com/venlin/kern/internal/api/middleware"
	"github.com/venlin/kern/internal/history"
	"github.com/venlin/kern/internal/kernel"
)

type Server struct {
	registry  *kernel.Registry
	invoker   *kernel.Invoker
	scheduler *kernel.Scheduler
	history   history.Store

	// authToken enables the shared-secret gate when non-empty
	authToken string
}

type ServerOption func(*Server)

// WithAuthToken enables bearer-token auth for everything except the
// health check.
func WithAuthToken(token string) ServerOption {
	return func(s *Server) {
		s.authToken = token
	}
}

func NewServer(
	registry *kernel.Registry,
	invoker *kernel.Invoker,
	scheduler *kernel.Scheduler,
	store history.Store,
	opts ...ServerOption,
) *Server {
	s := &Server{
		registry:  registry,
		invoker:   invoker,
		scheduler: scheduler,
		history:   store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	mux.HandleFunc("GET "+RunTaskRoute, s.handleRunTask)
	mux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.HandleFunc("GET "+HistoryForTaskRoute, s.handleHistoryForTask)
	mux.HandleFunc("GET "+VersionRoute, s.handleVersion)

	var handler http.Handler = mux
	if s.authToken != "" {
		handler = middleware.SharedSecretAuth(s.authToken)(handler)
	}

	// health stays outside the auth gate
	root := http.NewServeMux()
	root.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	root.Handle("/", handler)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				root)))
}
