// Package search answers natural-language queries against an indexed
// documentation tree.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

// DefaultLimit is the number of results returned when the caller does not ask
// for a specific count.
const DefaultLimit = 10

var (
	// ErrInvalidLimit is returned for a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query is empty")
)

// Service embeds queries and ranks stored chunks against them.
type Service struct {
	store    vectordb.ChunkStore
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewService creates a Service. The embedder must be the one the index was
// built with.
func NewService(store vectordb.ChunkStore, embedder embeddings.Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Search returns up to limit chunks nearest to query that satisfy every set
// field of filter, most relevant first. An empty index yields no results.
func (s *Service) Search(ctx context.Context, query string, limit int, filter vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidLimit, limit)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if s.store.Count() == 0 {
		return nil, nil
	}

	if dims := s.store.Dimensions(); dims != 0 && dims != s.embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index has %d, %s produces %d",
			vectordb.ErrDimensionMismatch, dims, s.embedder.Name(), s.embedder.Dimensions())
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	results, err := s.store.Search(ctx, vectors[0], limit, filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	s.logger.Debug("search finished",
		zap.String("query", query),
		zap.Int("limit", limit),
		zap.Int("results", len(results)),
	)
	return results, nil
}
