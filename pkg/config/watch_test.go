package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_TriggersReloadOnChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pressgate.yaml")

	if err := os.WriteFile(configPath, []byte("server:\n  name: one\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	w, err := NewWatcher(configPath, discardLogger())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(ctx, func() error {
			select {
			case reloaded <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watch loop time to register the directory.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(configPath, []byte("server:\n  name: two\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}
	if err := <-watchDone; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pressgate.yaml")

	if err := os.WriteFile(configPath, []byte("server:\n  name: one\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	w, err := NewWatcher(configPath, discardLogger())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	time.Sleep(200 * time.Millisecond)

	// Editor temp files and other siblings in the directory must not
	// trigger a reload.
	sibling := filepath.Join(tmpDir, "pressgate.yaml.swp")
	if err := os.WriteFile(sibling, []byte("scratch"), 0644); err != nil {
		t.Fatalf("failed to write sibling file: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if n := reloads.Load(); n != 0 {
		t.Errorf("expected no reloads for sibling file changes, got %d", n)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("failed to stop watcher: %v", err)
	}
	<-watchDone
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "pressgate.yaml")

	if err := os.WriteFile(configPath, []byte("server: {}\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	w, err := NewWatcher(configPath, discardLogger())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("expected Stop on idle watcher to succeed, got: %v", err)
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			calls.Add(1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("expected burst to collapse into 1 callback, got %d", n)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() {
		calls.Add(1)
	})
	d.Stop()

	time.Sleep(250 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("expected no callbacks after Stop, got %d", n)
	}
}
