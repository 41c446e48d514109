package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "employees.txt")
	other := filepath.Join(dir, "other.txt")

	fw, err := NewFileWatcher(target, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx)
	}()

	// changes to other files in the directory are ignored
	if err := os.WriteFile(other, []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if fw.Changed() {
		t.Fatal("unexpected change reported for another file")
	}

	if err := os.WriteFile(target, []byte("Ana,Dev,5000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor(fw.Changed, 2*time.Second) {
		t.Fatal("change to watched file not reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected watch error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

// TestFileWatcherChangeBeforeCancel checks a change still inside the flush
// window is reported when the watch is stopped.
func TestFileWatcherChangeBeforeCancel(t *testing.T) {
	target := filepath.Join(t.TempDir(), "employees.txt")

	fw, err := NewFileWatcher(target, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	fw.flushDuration = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx)
	}()
	// allow the watch goroutines to start
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(target, []byte("Ana,Dev,5000\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if fw.Changed() {
		t.Fatal("change reported before the flush window closed")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected watch error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
	if !fw.Changed() {
		t.Error("pending change lost on cancel")
	}
}

func TestNewFileWatcherMissingDir(t *testing.T) {
	_, err := NewFileWatcher(filepath.Join(t.TempDir(), "nothere", "employees.txt"), nil)
	if err == nil {
		t.Fatal("expected missing directory error")
	}
}
