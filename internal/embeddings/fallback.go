package embeddings

import (
	"context"

	"go.uber.org/zap"
)

// FallbackEmbedder substitutes zero vectors when the inner embedder fails,
// so a model outage does not abort a whole batch. Callers detect the
// substitutes with IsZero; the indexer reports such files as failed and
// retries them on the next run.
type FallbackEmbedder struct {
	inner  Embedder
	logger *zap.Logger
}

// NewFallbackEmbedder wraps inner.
func NewFallbackEmbedder(inner Embedder, logger *zap.Logger) *FallbackEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackEmbedder{inner: inner, logger: logger}
}

func (f *FallbackEmbedder) Name() string    { return f.inner.Name() }
func (f *FallbackEmbedder) Dimensions() int { return f.inner.Dimensions() }

// Embed never fails unless ctx is done.
func (f *FallbackEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := f.inner.Embed(ctx, texts)
	if err == nil {
		err = checkVectors(vectors, len(texts), f.inner.Dimensions())
	}
	if err == nil {
		return vectors, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	f.logger.Warn("embedding failed, using zero vectors",
		zap.String("model", f.inner.Name()),
		zap.Int("texts", len(texts)),
		zap.Error(err),
	)
	zeros := make([][]float32, len(texts))
	for i := range zeros {
		zeros[i] = make([]float32, f.inner.Dimensions())
	}
	return zeros, nil
}

// IsZero reports whether every component of v is zero, as in the vectors
// FallbackEmbedder substitutes.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
