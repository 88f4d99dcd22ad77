package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "embeddings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snaps := []*Snapshot{
		{ItemID: "A", ContentHash: "h1", Vector: []float32{0.5, -0.25, 1}},
		{ItemID: "B", ContentHash: "h2", Vector: []float32{0, 0, 0}},
	}
	if err := store.Save(ctx, "hashing-3", snaps); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx, "hashing-3")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	a := got["A"]
	if a == nil || a.ContentHash != "h1" || len(a.Vector) != 3 || a.Vector[0] != 0.5 || a.Vector[1] != -0.25 {
		t.Errorf("unexpected snapshot %+v", a)
	}

	other, err := store.Load(ctx, "other-model")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("models must not mix, got %d snapshots", len(other))
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "m", []*Snapshot{{ItemID: "A", ContentHash: "old", Vector: []float32{1}}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "m", []*Snapshot{{ItemID: "A", ContentHash: "new", Vector: []float32{2}}}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Load(ctx, "m")
	if got["A"].ContentHash != "new" || got["A"].Vector[0] != 2 {
		t.Errorf("expected replaced snapshot, got %+v", got["A"])
	}
	n, err := store.Count(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snaps := []*Snapshot{
		{ItemID: "A", ContentHash: "1", Vector: []float32{1}},
		{ItemID: "B", ContentHash: "2", Vector: []float32{1}},
		{ItemID: "C", ContentHash: "3", Vector: []float32{1}},
	}
	if err := store.Save(ctx, "m", snaps); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "other", snaps[:1]); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, "m", []string{"A", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	got, _ := store.Load(ctx, "m")
	if _, ok := got["B"]; ok || len(got) != 2 {
		t.Errorf("unexpected snapshots after prune: %v", got)
	}
	if n, _ := store.Count(ctx, "other"); n != 1 {
		t.Errorf("prune must not touch other models, count = %d", n)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.db")
	ctx := context.Background()
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "m", []*Snapshot{{ItemID: "A", ContentHash: "h", Vector: []float32{3}}}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Load(ctx, "m")
	if err != nil {
		t.Fatal(err)
	}
	if got["A"] == nil || got["A"].Vector[0] != 3 {
		t.Errorf("snapshot not persisted: %v", got)
	}
}

func TestDecodeVector_WrongLength(t *testing.T) {
	if _, err := decodeVector(make([]byte, 7), 2); err == nil {
		t.Error("expected error for truncated blob")
	}
}
