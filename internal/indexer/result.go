package indexer

import (
	"errors"
	"time"
)

var (
	// ErrModelChanged is returned when a non-forced run uses a different
	// embedding model or width than the index was built with.
	ErrModelChanged = errors.New("embedding model differs from the one the index was built with; rerun with --force")

	// ErrInvalidOptions is returned for unusable pipeline options.
	ErrInvalidOptions = errors.New("invalid indexing options")

	// ErrNoContent marks a file that produced no chunks.
	ErrNoContent = errors.New("no indexable content")

	// ErrEmbeddingFailed marks a file with chunks that got no usable
	// embedding, such as the zero vectors of a fallback embedder.
	ErrEmbeddingFailed = errors.New("embedding unavailable")

	// ErrIncompleteWrite marks a file whose chunks the store did not all keep.
	ErrIncompleteWrite = errors.New("store kept fewer chunks than written")
)

// PipelineResult summarizes the outcome of an indexing run.
type PipelineResult struct {
	RunID          string
	FilesFound     int
	FilesProcessed int
	FilesSkipped   int
	FilesFailed    int
	FilesDeleted   int
	// ChunksWritten counts rows written during this run.
	ChunksWritten int
	// StoreChunks is the store's row count after the run.
	StoreChunks int
	Duration    time.Duration
	Errors      []error
	Recovered   bool
}

// ProgressFunc is called before each discovered file is considered.
type ProgressFunc func(done int, total int, currentFile string)
