// Package embedding maps text to fixed-length dense vectors.
package embedding

import (
	"context"
	"fmt"

	"github.com/hyperjump/ragd/internal/models"
)

// Embedder produces vector embeddings for text.
// Embed must return exactly Dimensions() values for any input, including the empty string,
// and must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	// Model identifies the model version; vectors from different models are never mixed.
	Model() string
	Close() error
}

// EmbeddingError reports that the underlying model is unavailable or produced an unusable vector.
// It is fatal to the call: no fallback vector is substituted.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding with model %q failed: %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// Kind implements models.Kinded.
func (e *EmbeddingError) Kind() string { return models.KindEmbedding }

// checkDimensions converts a wrong-length model output into an EmbeddingError.
func checkDimensions(model string, vec []float32, want int) error {
	if len(vec) != want {
		return &EmbeddingError{Model: model, Err: fmt.Errorf("model returned %d dimensions, expected %d", len(vec), want)}
	}
	return nil
}
