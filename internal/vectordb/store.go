package vectordb

import (
	"context"
	"errors"
)

// ErrDimensionMismatch is returned when a vector's width differs from the
// width of the vectors already in the store.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ChunkStore is the persistent vector store holding document chunks.
type ChunkStore interface {
	// Add inserts or replaces the given chunks. Rows are keyed by chunk ID.
	Add(ctx context.Context, chunks []EmbeddedChunk) (int, error)

	// DeleteByFile removes every row whose original file path equals relPath.
	DeleteByFile(ctx context.Context, relPath string) error

	// Search returns up to limit rows nearest to vector, ordered by
	// ascending distance.
	Search(ctx context.Context, vector []float32, limit int, filter SearchFilter) ([]SearchResult, error)

	// Stats aggregates row counts over the whole store.
	Stats(ctx context.Context) (Stats, error)

	// Reset drops every row.
	Reset(ctx context.Context) error

	// Count returns the number of stored rows.
	Count() int

	// Dimensions returns the vector width of the store, or 0 when unknown.
	Dimensions() int

	Close() error
}
