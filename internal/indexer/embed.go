package indexer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/seta/internal/embeddings"
)

// embedTexts embeds texts in batches of batchSize, running up to
// concurrency batches at once. Vectors are returned in input order.
func embedTexts(ctx context.Context, e embeddings.Embedder, texts []string, batchSize, concurrency int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			batch, err := e.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed chunks %d-%d: got %d vectors", start, end-1, len(batch))
			}
			for i, v := range batch {
				if len(v) != e.Dimensions() {
					return fmt.Errorf("%w: %s returned %d, want %d",
						embeddings.ErrUnexpectedDimensions, e.Name(), len(v), e.Dimensions())
				}
				vectors[start+i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
