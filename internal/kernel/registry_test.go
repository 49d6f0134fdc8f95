package kernel

import (
	"context"
	"errors"
	"testing"
)

func nopTask(_ context.Context, _ *TaskContext, _ Args) (any, error) {
	return nil, nil
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name     string
		taskName string
		fn       TaskFunc
		pre      func(r *Registry)
		wantErr  bool
	}{
		{
			name:     "registers new task",
			taskName: "heartbeat",
			fn:       nopTask,
		},
		{
			name:     "rejects empty name",
			taskName: "",
			fn:       nopTask,
			wantErr:  true,
		},
		{
			name:     "rejects nil handler",
			taskName: "broken",
			wantErr:  true,
		},
		{
			name:     "rejects duplicate name",
			taskName: "heartbeat",
			fn:       nopTask,
			pre: func(r *Registry) {
				if err := r.Register("heartbeat", nopTask); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.pre != nil {
				tt.pre(r)
			}

			err := r.Register(tt.taskName, tt.fn)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Register() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_DuplicateIsTaskExistsError(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("heartbeat", nopTask); err != nil {
		t.Fatal(err)
	}

	err := r.Register("heartbeat", nopTask)
	var exists TaskExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected TaskExistsError, got %v", err)
	}
	if exists.Name != "heartbeat" {
		t.Errorf("unexpected task name in error: %s", exists.Name)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	called := false
	fn := func(_ context.Context, _ *TaskContext, _ Args) (any, error) {
		called = true
		return nil, nil
	}
	if err := r.Register("heartbeat", fn); err != nil {
		t.Fatal(err)
	}

	got, err := r.Get("heartbeat")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := got(context.Background(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("Get() did not return the registered handler")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("nonexistent")
	var notFound TaskNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TaskNotFoundError, got %v", err)
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"heartbeat", "demo:generate_post"} {
		if err := r.Register(name, nopTask); err != nil {
			t.Fatal(err)
		}
	}

	names := r.List()
	if len(names) != 2 {
		t.Fatalf("List() returned %d names, want 2", len(names))
	}

	seen := make(map[string]bool)
	for _, name := range names {
		seen[name] = true
	}
	if !seen["heartbeat"] || !seen["demo:generate_post"] {
		t.Errorf("List() = %v, missing expected names", names)
	}
}
