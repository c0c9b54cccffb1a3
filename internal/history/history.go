// Package history records one row per indexing run in the index's SQLite
// database.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/ziadkadry99/seta/internal/indexer"
)

// Status is the outcome of an indexing run.
type Status string

const (
	StatusCompleted   Status = "completed"
	StatusInterrupted Status = "interrupted"
	StatusFailed      Status = "failed"
)

// Run is a single indexing run.
type Run struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration_ns"`
	Status         Status        `json:"status"`
	Forced         bool          `json:"forced"`
	Recovered      bool          `json:"recovered"`
	Model          string        `json:"model"`
	FilesFound     int           `json:"files_found"`
	FilesProcessed int           `json:"files_processed"`
	FilesSkipped   int           `json:"files_skipped"`
	FilesFailed    int           `json:"files_failed"`
	FilesDeleted   int           `json:"files_deleted"`
	ChunksWritten  int           `json:"chunks_written"`
	StoreChunks    int           `json:"store_chunks"`
	Error          string        `json:"error,omitempty"`
}

// FromResult builds a Run from the outcome of Pipeline.Run. result may be
// nil when the run failed before doing any work.
func FromResult(result *indexer.PipelineResult, runErr error, started time.Time, model string, forced bool) Run {
	run := Run{
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Status:    StatusCompleted,
		Forced:    forced,
		Model:     model,
	}
	if result != nil {
		run.ID = result.RunID
		run.Recovered = result.Recovered
		run.FilesFound = result.FilesFound
		run.FilesProcessed = result.FilesProcessed
		run.FilesSkipped = result.FilesSkipped
		run.FilesFailed = result.FilesFailed
		run.FilesDeleted = result.FilesDeleted
		run.ChunksWritten = result.ChunksWritten
		run.StoreChunks = result.StoreChunks
		if result.Duration > 0 {
			run.Duration = result.Duration
		}
	}
	if runErr != nil {
		run.Status = StatusFailed
		if errors.Is(runErr, context.Canceled) {
			run.Status = StatusInterrupted
		}
		run.Error = runErr.Error()
	}
	return run
}
