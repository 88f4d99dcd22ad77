package embedding

import (
	"context"
	"testing"

	"github.com/hyperjump/ragd/internal/vector"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	e, err := NewHashingEmbedder(64)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	a, err := e.Embed(ctx, "Database connection timeout")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "database CONNECTION timeout!")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("expected 64 dims, got %d and %d", len(a), len(b))
	}
	if sim := vector.CosineSimilarity(a, b); sim < 0.999 {
		t.Errorf("same words should embed identically, cosine=%f", sim)
	}
}

func TestHashingEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e, _ := NewHashingEmbedder(16)
	for _, text := range []string{"", "   ", "!!"} {
		vec, err := e.Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("Embed(%q): %v", text, err)
		}
		if len(vec) != 16 {
			t.Fatalf("Embed(%q) len = %d", text, len(vec))
		}
		for _, v := range vec {
			if v != 0 {
				t.Fatalf("Embed(%q) expected zero vector, got %v", text, vec)
			}
		}
	}
}

func TestHashingEmbedder_OverlapRanksHigher(t *testing.T) {
	e, _ := NewHashingEmbedder(256)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "database connection timeout")
	a, _ := e.Embed(ctx, "Db timeout connection pool exhausted database")
	b, _ := e.Embed(ctx, "UI button misaligned")
	if vector.CosineSimilarity(q, a) <= vector.CosineSimilarity(q, b) {
		t.Errorf("overlapping text should score higher: a=%f b=%f",
			vector.CosineSimilarity(q, a), vector.CosineSimilarity(q, b))
	}
}

func TestHashingEmbedder_InvalidDimensions(t *testing.T) {
	if _, err := NewHashingEmbedder(0); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

func TestHashingEmbedder_CanceledContext(t *testing.T) {
	e, _ := NewHashingEmbedder(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Embed(ctx, "text"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestEmbedAll_PreservesOrder(t *testing.T) {
	e, _ := NewHashingEmbedder(32)
	ctx := context.Background()
	texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	got, err := EmbedAll(ctx, e, texts, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(got))
	}
	for i, text := range texts {
		want, _ := e.Embed(ctx, text)
		if vector.CosineSimilarity(got[i], want) < 0.999 {
			t.Errorf("vector %d does not match %q", i, text)
		}
	}
}

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(Options{Provider: ProviderHashing, Dimensions: 8})
	if err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 8 || e.Model() != "hashing-8" {
		t.Errorf("unexpected embedder: dims=%d model=%s", e.Dimensions(), e.Model())
	}
	if _, err := NewEmbedder(Options{Provider: "word2vec", Dimensions: 8}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewEmbedder(Options{Provider: ProviderOllama, Dimensions: 8}); err == nil {
		t.Error("expected error for ollama without model")
	}
}
