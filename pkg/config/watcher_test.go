package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, `
admission:
  capacity: 10
`)

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watch loop a moment before mutating the file
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("admission:\n  capacity: 25\n"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Admission.Capacity != 25 {
			t.Errorf("Expected reloaded capacity 25, got %d", cfg.Admission.Capacity)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Reload callback never fired")
	}
}

func TestWatcher_KeepsPreviousConfigOnBadReload(t *testing.T) {
	path := writeConfig(t, `
admission:
  capacity: 10
`)

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) {
			reloaded <- cfg
		})
	}()

	time.Sleep(50 * time.Millisecond)

	// An invalid rewrite must not reach the callback
	if err := os.WriteFile(path, []byte("admission: [broken"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("Callback fired for invalid config: %+v", cfg)
	case <-time.After(600 * time.Millisecond):
	}

	// A subsequent valid rewrite recovers
	if err := os.WriteFile(path, []byte("admission:\n  capacity: 7\n"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Admission.Capacity != 7 {
			t.Errorf("Expected capacity 7 after recovery, got %d", cfg.Admission.Capacity)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watcher never recovered after a bad reload")
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	path := writeConfig(t, "admission:\n  capacity: 10\n")

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- watcher.Watch(ctx, func(*Config) {})
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error on cancel: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop on context cancellation")
	}
}
