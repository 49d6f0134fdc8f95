package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the server configuration loaded from YAML. Secrets never live
// here: fields like AuthTokenEnv name environment variables instead of
// holding values.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// AuthTokenEnv names the environment variable holding the shared
	// API token. When the variable is set, all routes except /healthz
	// require it as a bearer token.
	AuthTokenEnv string `yaml:"auth_token_env"`

	// RunTimeout bounds a single task execution. Zero means the kernel
	// default applies.
	RunTimeout time.Duration `yaml:"run_timeout"`

	// State seeds the shared state tasks can read.
	State map[string]any `yaml:"state"`

	History  HistoryConfig   `yaml:"history"`
	Schedule []ScheduleEntry `yaml:"schedule"`
}

// HistoryConfig selects the run-history backend.
type HistoryConfig struct {
	// Type is "memory" (default) or "sqlite".
	Type string `yaml:"type"`

	// Path is the sqlite database file. Required for type "sqlite".
	Path string `yaml:"path"`

	// Limit caps how many records the memory backend retains.
	Limit int `yaml:"limit"`
}

// ScheduleEntry declares one fixed-interval schedule.
type ScheduleEntry struct {
	Task  string         `yaml:"task"`
	Every time.Duration  `yaml:"every"`
	Args  map[string]any `yaml:"args"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		AuthTokenEnv: "KERN_AUTH_TOKEN",
	}
}

// Load reads and parses the configuration file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.History.Type {
	case "", "memory":
	case "sqlite":
		if c.History.Path == "" {
			return fmt.Errorf("history type 'sqlite' requires a path")
		}
	default:
		return fmt.Errorf("unknown history type '%s'", c.History.Type)
	}

	if c.RunTimeout < 0 {
		return fmt.Errorf("run_timeout cannot be negative")
	}

	seen := make(map[string]struct{})
	for idx, entry := range c.Schedule {
		if entry.Task == "" {
			return fmt.Errorf("schedule entry at index %d has empty task", idx)
		}
		if entry.Every <= 0 {
			return fmt.Errorf("schedule entry '%s' has non-positive interval", entry.Task)
		}
		if _, ok := seen[entry.Task]; ok {
			return fmt.Errorf("schedule entry '%s' is declared twice", entry.Task)
		}
		seen[entry.Task] = struct{}{}
	}

	return nil
}
