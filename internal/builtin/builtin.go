// Package builtin registers the tasks that ship with kern.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/venlin/kern/internal/kernel"
)

// APIKeyEnv names the environment variable holding the generation API
// key. Secrets are only ever read from the environment, never from
// configuration files.
const APIKeyEnv = "KERN_API_KEY"

// RegisterAll registers every built-in task.
func RegisterAll(reg *kernel.Registry) error {
	for name, fn := range map[string]kernel.TaskFunc{
		"heartbeat":          Heartbeat,
		"demo:generate_post": GeneratePost,
		"state:dump":         StateDump,
	} {
		if err := reg.Register(name, fn); err != nil {
			return fmt.Errorf("registering builtin task '%s': %w", name, err)
		}
	}
	return nil
}

// Heartbeat reports liveness.
func Heartbeat(_ context.Context, tc *kernel.TaskContext, _ kernel.Args) (any, error) {
	tc.Logger.Debug("heartbeat fired")
	return map[string]any{"status": "ok"}, nil
}

type generatePostParams struct {
	Topic string `mapstructure:"topic"`
	Style string `mapstructure:"style"`
}

// GeneratePost drafts a short social post about the given topic. Without
// an API key in the environment it falls back to an offline template so
// the task stays usable in development.
func GeneratePost(_ context.Context, tc *kernel.TaskContext, args kernel.Args) (any, error) {
	var params generatePostParams
	if err := mapstructure.WeakDecode(map[string]any(args), &params); err != nil {
		return nil, fmt.Errorf("decoding arguments: %w", err)
	}
	if params.Topic == "" {
		return nil, errors.New("missing topic")
	}
	if params.Style == "" {
		params.Style = "casual"
	}

	if os.Getenv(APIKeyEnv) == "" {
		tc.Logger.Warn("no %s set, using offline template", APIKeyEnv)
	}

	post := fmt.Sprintf("Thoughts on %s: the %s take. (drafted %s)",
		params.Topic, params.Style, time.Now().Format("2006-01-02"))

	tc.Logger.Info("drafted post about '%s'", params.Topic)
	return map[string]any{
		"topic": params.Topic,
		"style": params.Style,
		"post":  post,
		"tags":  []string{"#" + strings.ReplaceAll(params.Topic, " ", "")},
	}, nil
}

// StateDump returns a snapshot of the shared state.
func StateDump(_ context.Context, tc *kernel.TaskContext, _ kernel.Args) (any, error) {
	snapshot := tc.Shared.Snapshot()
	tc.Logger.Info("dumped %d state entries", len(snapshot))
	return snapshot, nil
}
