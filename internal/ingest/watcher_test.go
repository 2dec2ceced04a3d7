package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_EmitsDroppedPDF(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := StartWatcher(ctx, WatchConfig{
		Root:       root,
		Debounce:   50 * time.Millisecond,
		SkipHidden: true,
	}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	dropped := filepath.Join(root, "new.pdf")
	if err := os.WriteFile(dropped, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-events:
		if p != dropped {
			t.Errorf("event path = %q, want %q", p, dropped)
		}
	case err := <-errs:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("dropped file never emitted")
	}
}

func TestWatcher_CleanShutdownWithArmedDebounce(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	events, errs, err := StartWatcher(ctx, WatchConfig{
		Root:       root,
		Debounce:   200 * time.Millisecond,
		SkipHidden: true,
	}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	// Land a file so the debounce timer is armed, then cancel inside the
	// debounce window. The timer expiring after shutdown must not reach the
	// closed event channel.
	if err := os.WriteFile(filepath.Join(root, "late.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()
	time.Sleep(400 * time.Millisecond)

	deadline := time.After(3 * time.Second)
	for events != nil || errs != nil {
		select {
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-deadline:
			t.Fatal("channels did not close after cancellation")
		}
	}
}
