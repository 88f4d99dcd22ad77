package embedding

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/hyperjump/ragd/pkg/utils"
)

// HashingEmbedder is a deterministic bag-of-words embedder using the signed hashing trick.
// Texts that share words get a positive cosine similarity, which makes it usable offline and in
// tests. Empty text (or text without words) embeds to the zero vector.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a hashing embedder of the given dimensions.
func NewHashingEmbedder(dimensions int) (*HashingEmbedder, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &HashingEmbedder{dimensions: dimensions}, nil
}

// Embed hashes each word into a bucket with a sign and L2-normalizes the result.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, word := range Words(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(word))
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dimensions))
		if sum>>63 == 1 {
			emb[bucket]--
		} else {
			emb[bucket]++
		}
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the model identifier.
func (e *HashingEmbedder) Model() string {
	return fmt.Sprintf("hashing-%d", e.dimensions)
}

// Close is a no-op.
func (e *HashingEmbedder) Close() error {
	return nil
}
