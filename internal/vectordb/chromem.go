package vectordb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/renameio"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

const (
	collectionName = "chunks"
	manifestFile   = "store.json"
)

var errPrecomputedOnly = errors.New("chunk store only accepts precomputed embeddings")

// ChromemConfig configures a persistent chromem-go store.
type ChromemConfig struct {
	// Dir holds one gob file per row plus the store manifest.
	Dir string

	// Compress gzips the row files.
	Compress bool

	// Concurrency bounds parallel row writes. Default: number of CPUs.
	Concurrency int
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.NumCPU()
	}
}

// Validate validates the configuration.
func (c *ChromemConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("store directory is required")
	}
	return nil
}

// manifest records properties of the store that chromem-go does not track.
type manifest struct {
	Dimensions int       `json:"dimensions"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ChromemStore implements ChunkStore on top of a persistent chromem-go DB.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	config     ChromemConfig
	manifest   manifest
	logger     *zap.Logger
}

// NewChromemStore opens (or creates) the store at config.Dir.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", config.Dir, err)
	}

	db, err := chromem.NewPersistentDB(config.Dir, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening chromem DB: %w", err)
	}

	s := &ChromemStore{db: db, config: config, logger: logger}
	if err := s.loadManifest(); err != nil {
		return nil, err
	}
	if err := s.openCollection(); err != nil {
		return nil, err
	}

	logger.Debug("chunk store opened",
		zap.String("path", config.Dir),
		zap.Int("rows", s.collection.Count()),
		zap.Int("dimensions", s.manifest.Dimensions),
	)
	return s, nil
}

func (s *ChromemStore) openCollection() error {
	col, err := s.db.GetOrCreateCollection(collectionName, nil, precomputedOnly)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	s.collection = col
	return nil
}

func precomputedOnly(context.Context, string) ([]float32, error) {
	return nil, errPrecomputedOnly
}

// Add writes the chunks, replacing rows with the same ID. Rows whose vector
// has zero length (fallback embeddings) can never be ranked by cosine
// similarity and are not written; the number of rows written is returned.
func (s *ChromemStore) Add(ctx context.Context, chunks []EmbeddedChunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]chromem.Document, 0, len(chunks))
	dims := s.manifest.Dimensions
	for _, c := range chunks {
		if dims == 0 {
			dims = len(c.Embedding)
		}
		if len(c.Embedding) != dims {
			return 0, fmt.Errorf("%w: chunk %s has %d, store has %d", ErrDimensionMismatch, c.ID, len(c.Embedding), dims)
		}
		if isZero(c.Embedding) {
			s.logger.Warn("skipping chunk without embedding", zap.String("chunk_id", c.ID))
			continue
		}
		md, err := encodeMetadata(c.Chunk)
		if err != nil {
			return 0, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		docs = append(docs, chromem.Document{
			ID:        c.ID,
			Metadata:  md,
			Embedding: c.Embedding,
			Content:   c.Text,
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if dims != s.manifest.Dimensions {
		s.manifest.Dimensions = dims
		if err := s.saveManifest(); err != nil {
			return 0, err
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, s.config.Concurrency); err != nil {
		return 0, fmt.Errorf("adding rows: %w", err)
	}
	return len(docs), nil
}

// DeleteByFile removes all rows that came from relPath.
func (s *ChromemStore) DeleteByFile(ctx context.Context, relPath string) error {
	if relPath == "" {
		return errors.New("delete by file: empty path")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.collection.Delete(ctx, map[string]string{keyOriginalFile: relPath}, nil); err != nil {
		return fmt.Errorf("deleting rows for %s: %w", relPath, err)
	}
	return nil
}

// Search runs an exhaustive cosine search. Distance is 1 - cosine similarity.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, limit int, filter SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if len(vector) != s.manifest.Dimensions {
		return nil, fmt.Errorf("%w: query has %d, store has %d", ErrDimensionMismatch, len(vector), s.manifest.Dimensions)
	}
	if isZero(vector) {
		return nil, errors.New("query vector is all zeros")
	}
	if limit > count {
		limit = count
	}

	rows, err := s.collection.QueryEmbedding(ctx, vector, limit, whereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}

	results := make([]SearchResult, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(float64(r.Similarity)) {
			continue
		}
		chunk, err := decodeChunk(r.ID, r.Content, r.Metadata)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Chunk: chunk, Distance: 1 - r.Similarity})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results, nil
}

// Stats walks every row. chromem-go has no listing API, so rows are fetched
// with an unfiltered query sized to the whole collection.
func (s *ChromemStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Dimensions: s.manifest.Dimensions, LibraryChunks: map[string]int{}}
	count := s.collection.Count()
	if count == 0 || s.manifest.Dimensions == 0 {
		return st, nil
	}

	unit := make([]float32, s.manifest.Dimensions)
	unit[0] = 1
	rows, err := s.collection.QueryEmbedding(ctx, unit, count, nil, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("listing rows: %w", err)
	}

	topics := map[string]struct{}{}
	files := map[string]struct{}{}
	for _, r := range rows {
		chunk, err := decodeChunk(r.ID, r.Content, r.Metadata)
		if err != nil {
			return Stats{}, err
		}
		st.TotalChunks++
		st.LibraryChunks[chunk.LibraryID]++
		files[chunk.OriginalFilePath] = struct{}{}
		if chunk.TopicName != "" {
			topics[chunk.TopicName] = struct{}{}
		}
	}
	st.UniqueLibraries = len(st.LibraryChunks)
	st.UniqueTopics = len(topics)
	st.UniqueFiles = len(files)
	return st, nil
}

// Reset drops every row and forgets the vector width.
func (s *ChromemStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Reset(); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	s.manifest = manifest{}
	if err := s.openCollection(); err != nil {
		return err
	}
	s.logger.Debug("chunk store reset", zap.String("path", s.config.Dir))
	return nil
}

// Count returns the number of stored rows.
func (s *ChromemStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

// Dimensions returns the vector width recorded for the store.
func (s *ChromemStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest.Dimensions
}

// Close is a no-op; every row is persisted as it is written.
func (s *ChromemStore) Close() error {
	return nil
}

func (s *ChromemStore) loadManifest() error {
	data, err := os.ReadFile(filepath.Join(s.config.Dir, manifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading store manifest: %w", err)
	}
	if err := json.Unmarshal(data, &s.manifest); err != nil {
		return fmt.Errorf("parsing store manifest: %w", err)
	}
	return nil
}

func (s *ChromemStore) saveManifest() error {
	s.manifest.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store manifest: %w", err)
	}
	if err := renameio.WriteFile(filepath.Join(s.config.Dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing store manifest: %w", err)
	}
	return nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
