package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCatalogWatcher_MarksStaleOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(path, []byte("ProductID,Description\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changes := make(chan fsnotify.Op, 4)
	w, err := NewCatalogWatcher(path,
		WithDebounce(20*time.Millisecond),
		WithOnChange(func(_ string, op fsnotify.Op) { changes <- op }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if stale, _ := w.Stale(); stale {
		t.Fatal("fresh watcher should not be stale")
	}
	if err := os.WriteFile(path, []byte("ProductID,Description\nA,changed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		stale, _ := w.Stale()
		return stale
	})
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Error("onChange not called")
	}
	if _, at := w.Stale(); at.IsZero() {
		t.Error("change time should be recorded")
	}
}

func TestCatalogWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.csv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	w, err := NewCatalogWatcher(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if stale, _ := w.Stale(); stale {
		t.Error("changes to other files must not mark the catalog stale")
	}
}

func TestCatalogWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewCatalogWatcher(filepath.Join(t.TempDir(), "catalog.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestCatalogWatcher_MissingDirectory(t *testing.T) {
	w, err := NewCatalogWatcher(filepath.Join(t.TempDir(), "nope", "catalog.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error for missing directory")
	}
}
