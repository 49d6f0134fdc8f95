package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kern.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
auth_token_env: KERN_AUTH_TOKEN
run_timeout: 30s
state:
  region: eu-central-1
history:
  type: sqlite
  path: kern.db
schedule:
  - task: heartbeat
    every: 30s
    args:
      source: schedule
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %s", cfg.Listen)
	}
	if cfg.RunTimeout != 30*time.Second {
		t.Errorf("RunTimeout = %s", cfg.RunTimeout)
	}
	if cfg.History.Type != "sqlite" || cfg.History.Path != "kern.db" {
		t.Errorf("History = %+v", cfg.History)
	}
	if len(cfg.Schedule) != 1 {
		t.Fatalf("Schedule has %d entries", len(cfg.Schedule))
	}
	entry := cfg.Schedule[0]
	if entry.Task != "heartbeat" || entry.Every != 30*time.Second {
		t.Errorf("Schedule[0] = %+v", entry)
	}
	if entry.Args["source"] != "schedule" {
		t.Errorf("Schedule[0].Args = %v", entry.Args)
	}
	if cfg.State["region"] != "eu-central-1" {
		t.Errorf("State = %v", cfg.State)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("default Listen = %s", cfg.Listen)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "valid minimal",
			yaml: `listen: ":8080"`,
		},
		{
			name:    "sqlite without path",
			yaml:    "history:\n  type: sqlite\n",
			wantErr: true,
		},
		{
			name:    "unknown history type",
			yaml:    "history:\n  type: postgres\n",
			wantErr: true,
		},
		{
			name:    "schedule with empty task",
			yaml:    "schedule:\n  - task: \"\"\n    every: 10s\n",
			wantErr: true,
		},
		{
			name:    "schedule with zero interval",
			yaml:    "schedule:\n  - task: heartbeat\n    every: 0s\n",
			wantErr: true,
		},
		{
			name:    "schedule with negative interval",
			yaml:    "schedule:\n  - task: heartbeat\n    every: -5s\n",
			wantErr: true,
		},
		{
			name:    "duplicate schedule entry",
			yaml:    "schedule:\n  - task: heartbeat\n    every: 10s\n  - task: heartbeat\n    every: 20s\n",
			wantErr: true,
		},
		{
			name:    "negative run timeout",
			yaml:    "run_timeout: -1s\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			if tt.wantErr != (err != nil) {
				t.Fatalf("Load() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
