package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/extract"
	"github.com/ziadkadry99/seta/internal/vectordb"
	"github.com/ziadkadry99/seta/internal/walker"
)

// Options configures a synchronization run.
type Options struct {
	RootDir  string // Documentation tree.
	IndexDir string // Holds the state file and the lock.

	ChunkSize    int
	ChunkOverlap int

	Include          []string
	Exclude          []string
	RespectGitignore bool

	// Force drops the store and all fingerprints before indexing.
	Force bool

	ChangeDetection ChangeDetection

	EmbedBatchSize   int
	EmbedConcurrency int
}

func (o *Options) validate() error {
	switch {
	case o.RootDir == "":
		return fmt.Errorf("%w: root directory is required", ErrInvalidOptions)
	case o.IndexDir == "":
		return fmt.Errorf("%w: index directory is required", ErrInvalidOptions)
	case o.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidOptions, o.ChunkSize)
	case o.ChunkOverlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidOptions, o.ChunkOverlap)
	}
	if o.ChangeDetection == "" {
		o.ChangeDetection = DetectHashOrMtime
	}
	if o.ChangeDetection != DetectHashOrMtime && o.ChangeDetection != DetectHash {
		return fmt.Errorf("%w: unknown change detection %q", ErrInvalidOptions, o.ChangeDetection)
	}
	return nil
}

// Pipeline keeps a chunk store in sync with a documentation tree.
type Pipeline struct {
	opts       Options
	store      vectordb.ChunkStore
	embedder   embeddings.Embedder
	extractor  extract.Extractor
	logger     *zap.Logger
	onProgress ProgressFunc
}

// NewPipeline creates a new Pipeline.
func NewPipeline(
	opts Options,
	store vectordb.ChunkStore,
	embedder embeddings.Embedder,
	extractor extract.Extractor,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		opts:      opts,
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		logger:    logger,
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Run performs one synchronization pass:
//
//  1. with Force, remove the state file and drop every store row;
//  2. load fingerprints and discover files;
//  3. delete rows of fingerprinted files that no longer exist;
//  4. for each new or changed file, extract, chunk and embed it, then
//     replace its rows (delete then add) and record its fingerprint;
//  5. write the state file atomically.
//
// Per-file extraction and embedding failures are collected in the result
// and leave the file's previous fingerprint and rows in place. Store and
// state write failures abort the run. On cancellation the fingerprints of
// completed files are saved and the context error is returned.
//
// Once the lock is held the result is returned even on failure, so the
// caller can record the run. A model change is refused with a nil result.
func (p *Pipeline) Run(ctx context.Context) (*PipelineResult, error) {
	start := time.Now()
	opts := p.opts
	if err := opts.validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	indexDir, err := filepath.Abs(opts.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("resolve index dir: %w", err)
	}

	lock := NewIndexLock(indexDir)
	if err := lock.TryLock(); err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("releasing index lock", zap.Error(err))
		}
	}()

	result := &PipelineResult{RunID: uuid.NewString()}
	log := p.logger.With(zap.String("run_id", result.RunID))

	if opts.Force {
		log.Info("forced rebuild, dropping index")
		if err := RemoveState(indexDir); err != nil {
			return result, err
		}
		if err := p.store.Reset(ctx); err != nil {
			return result, fmt.Errorf("reset store: %w", err)
		}
	}

	state, err := LoadState(indexDir)
	if err != nil {
		return result, err
	}
	if err := p.checkModel(state); err != nil {
		return nil, err
	}
	result.Recovered = state.Dirty
	if state.Dirty {
		log.Warn("previous run was interrupted, re-indexing every file")
	}

	files, err := walker.Discover(walker.Config{
		RootDir:          root,
		Include:          opts.Include,
		Exclude:          opts.Exclude,
		SkipDirs:         []string{indexDir},
		RespectGitignore: opts.RespectGitignore,
	})
	if err != nil {
		return result, err
	}
	result.FilesFound = len(files)
	log.Debug("discovered files", zap.Int("count", len(files)), zap.String("root", root))

	// Mark the state dirty before the first store mutation so that a crash
	// is detected by the next run.
	state.Dirty = true
	state.EmbeddingModel = p.embedder.Name()
	state.Dimensions = p.embedder.Dimensions()
	if err := state.Save(indexDir); err != nil {
		return result, err
	}

	if !opts.Force {
		if err := p.removeDeleted(ctx, log, state, files, root, result); err != nil {
			return result, err
		}
	}

	var runErr error
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if p.onProgress != nil {
			p.onProgress(i, len(files), file.RelPath)
		}

		err := p.syncFile(ctx, log, state, file, result)
		if err == nil {
			continue
		}
		if isFatal(err) {
			// The dirty flag stays set on disk, so the next run re-indexes.
			return result, err
		}
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		log.Warn("skipping file", zap.String("file", file.RelPath), zap.Error(err))
		result.FilesFailed++
		result.Errors = append(result.Errors, fmt.Errorf("%s: %w", file.RelPath, err))
		if result.Recovered {
			if err := p.dropFile(ctx, state, file); err != nil {
				return result, err
			}
		}
	}
	if p.onProgress != nil && runErr == nil {
		p.onProgress(len(files), len(files), "")
	}

	state.Dirty = false
	state.LastUpdated = time.Now().UTC()
	if err := state.Save(indexDir); err != nil {
		return result, err
	}

	result.StoreChunks = p.store.Count()
	result.Duration = time.Since(start)
	log.Debug("index run finished",
		zap.Int("processed", result.FilesProcessed),
		zap.Int("skipped", result.FilesSkipped),
		zap.Int("failed", result.FilesFailed),
		zap.Int("deleted", result.FilesDeleted),
		zap.Duration("duration", result.Duration),
	)

	if runErr != nil {
		return result, fmt.Errorf("indexing interrupted: %w", runErr)
	}
	return result, nil
}

// checkModel refuses to mix vectors of different models in one store.
func (p *Pipeline) checkModel(state *IndexState) error {
	if len(state.Files) > 0 && state.EmbeddingModel != "" &&
		(state.EmbeddingModel != p.embedder.Name() || state.Dimensions != p.embedder.Dimensions()) {
		return fmt.Errorf("%w (index: %s/%d, configured: %s/%d)", ErrModelChanged,
			state.EmbeddingModel, state.Dimensions, p.embedder.Name(), p.embedder.Dimensions())
	}
	if dims := p.store.Dimensions(); dims != 0 && p.store.Count() > 0 && dims != p.embedder.Dimensions() {
		return fmt.Errorf("%w (store width %d, configured %d)", ErrModelChanged, dims, p.embedder.Dimensions())
	}
	return nil
}

// removeDeleted deletes the rows and fingerprints of files that were
// indexed before but are no longer discovered.
func (p *Pipeline) removeDeleted(ctx context.Context, log *zap.Logger, state *IndexState, files []walker.DocumentFile, root string, result *PipelineResult) error {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Path] = true
	}

	var gone []string
	for abs := range state.Files {
		if !present[abs] {
			gone = append(gone, abs)
		}
	}
	sort.Strings(gone)

	for _, abs := range gone {
		rel, err := state.RelPathFor(abs, root)
		if err != nil {
			return err
		}
		log.Debug("removing deleted file", zap.String("file", rel))
		if err := p.store.DeleteByFile(ctx, rel); err != nil {
			return &storeError{fmt.Errorf("delete rows of removed file %s: %w", rel, err)}
		}
		delete(state.Files, abs)
		result.FilesDeleted++
	}
	return nil
}

// syncFile skips file when its fingerprint is unchanged, and otherwise
// replaces its rows and records the new fingerprint.
func (p *Pipeline) syncFile(ctx context.Context, log *zap.Logger, state *IndexState, file walker.DocumentFile, result *PipelineResult) error {
	changed, fp, err := state.HasChanged(file, p.opts.ChangeDetection)
	if err != nil {
		return err
	}
	if !changed && !p.opts.Force && !result.Recovered {
		log.Debug("skipping unchanged file", zap.String("file", file.RelPath))
		result.FilesSkipped++
		return nil
	}

	log.Debug("processing file", zap.String("file", file.RelPath))
	text, err := p.extractor.Extract(ctx, file.Path)
	if err != nil {
		return err
	}
	chunks := ChunkDocument(file, text, p.opts.ChunkSize, p.opts.ChunkOverlap)
	if len(chunks) == 0 {
		return ErrNoContent
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedTexts(ctx, p.embedder, texts, p.opts.EmbedBatchSize, p.opts.EmbedConcurrency)
	if err != nil {
		if errors.Is(err, embeddings.ErrUnexpectedDimensions) {
			return &configError{err}
		}
		return err
	}
	if n := countZero(vectors); n > 0 {
		return fmt.Errorf("%w: %d of %d chunks", ErrEmbeddingFailed, n, len(vectors))
	}

	embedded := make([]vectordb.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = vectordb.EmbeddedChunk{Chunk: c, Embedding: vectors[i]}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.DeleteByFile(ctx, file.RelPath); err != nil {
		return &storeError{fmt.Errorf("delete old rows of %s: %w", file.RelPath, err)}
	}
	written, err := p.store.Add(ctx, embedded)
	if err != nil {
		return &storeError{fmt.Errorf("add rows of %s: %w", file.RelPath, err)}
	}
	if written != len(embedded) {
		// The old rows are already gone, so the old fingerprint goes too.
		if err := p.store.DeleteByFile(ctx, file.RelPath); err != nil {
			return &storeError{fmt.Errorf("delete partial rows of %s: %w", file.RelPath, err)}
		}
		delete(state.Files, file.Path)
		return fmt.Errorf("%w: %d of %d", ErrIncompleteWrite, written, len(embedded))
	}

	fp.ChunkCount = written
	state.Files[file.Path] = fp
	result.FilesProcessed++
	result.ChunksWritten += written
	log.Debug("indexed file", zap.String("file", file.RelPath), zap.Int("chunks", written))
	return nil
}

// dropFile removes a file's rows and fingerprint. During recovery the rows
// of a file that now fails may be partial, so neither is kept.
func (p *Pipeline) dropFile(ctx context.Context, state *IndexState, file walker.DocumentFile) error {
	if _, ok := state.Files[file.Path]; !ok {
		return nil
	}
	if err := p.store.DeleteByFile(ctx, file.RelPath); err != nil {
		return &storeError{fmt.Errorf("delete rows of failed file %s: %w", file.RelPath, err)}
	}
	delete(state.Files, file.Path)
	return nil
}

func countZero(vectors [][]float32) int {
	n := 0
	for _, v := range vectors {
		if embeddings.IsZero(v) {
			n++
		}
	}
	return n
}

// storeError marks store failures, which abort the run.
type storeError struct{ err error }

func (e *storeError) Error() string { return e.err.Error() }
func (e *storeError) Unwrap() error { return e.err }

// configError marks failures that would repeat for every file.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func isFatal(err error) bool {
	var se *storeError
	var ce *configError
	return errors.As(err, &se) || errors.As(err, &ce)
}
