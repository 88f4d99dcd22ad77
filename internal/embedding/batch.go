package embedding

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// EmbedAll embeds texts with at most concurrency calls in flight and returns vectors in input order.
// The first error cancels the remaining calls and is returned.
func EmbedAll(ctx context.Context, e Embedder, texts []string, concurrency int) ([][]float32, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, text)
			if err != nil {
				return err
			}
			out[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
