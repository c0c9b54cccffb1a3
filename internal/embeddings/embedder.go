package embeddings

import (
	"context"
	"errors"
	"fmt"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// ErrUnexpectedDimensions is returned when a provider answers with vectors
// of a different width than configured.
var ErrUnexpectedDimensions = errors.New("unexpected embedding dimensions")

// checkVectors verifies that a provider returned exactly one vector of the
// expected width per input.
func checkVectors(vectors [][]float32, inputs, dims int) error {
	if len(vectors) != inputs {
		return fmt.Errorf("got %d embeddings for %d inputs", len(vectors), inputs)
	}
	if dims <= 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: embedding %d has %d, want %d", ErrUnexpectedDimensions, i, len(v), dims)
		}
	}
	return nil
}
