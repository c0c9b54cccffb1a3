package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/seta/internal/db"
	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/extract"
	"github.com/ziadkadry99/seta/internal/history"
	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/progress"
)

// indexFlags holds the flags shared by "seta index" and the bare "seta <folder>".
var indexFlags struct {
	force        bool
	chunkSize    int
	chunkOverlap int
	model        string
	provider     string
	include      []string
	exclude      []string
	concurrency  int
}

var indexCmd = &cobra.Command{
	Use:   "index <folder>",
	Short: "Index a documentation folder into the vector database",
	Long: `Walks the folder, splits every supported document into overlapping chunks,
embeds them and stores them in <folder>/.seta_index. Files whose content is
unchanged since the last run are skipped; files that disappeared are removed
from the index.

The first directory level of the folder is recorded as the library and the
second level as the topic, so "react/hooks/state.md" belongs to library
"react", topic "hooks".`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func addIndexFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&indexFlags.force, "force", false, "drop the existing index and rebuild it from scratch")
	f.IntVar(&indexFlags.chunkSize, "chunk-size", 1000, "maximum chunk length in characters")
	f.IntVar(&indexFlags.chunkOverlap, "chunk-overlap", 200, "characters carried over from the previous chunk")
	f.StringVar(&indexFlags.model, "model", "", "embedding model (default depends on provider)")
	f.StringVar(&indexFlags.provider, "provider", "", "embedding provider: ollama, openai, google, static")
	f.StringSliceVar(&indexFlags.include, "include", nil, "glob of files to index (repeatable, replaces defaults)")
	f.StringSliceVar(&indexFlags.exclude, "exclude", nil, "glob of files to skip (repeatable)")
	f.IntVar(&indexFlags.concurrency, "concurrency", 0, "parallel embedding requests (overrides config)")
}

func init() {
	addIndexFlags(indexCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	folder, err := folderArg(args, 0)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, folder)
	if err != nil {
		return err
	}
	indexDir := cfg.IndexDir(folder, dbPath)

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	if cfg.EmbeddingFallback {
		embedder = embeddings.NewFallbackEmbedder(embedder, logger)
	}

	store, err := openStore(indexDir)
	if err != nil {
		return err
	}
	defer store.Close()

	extractor := extract.NewRouter(extract.NewPDFExtractor(cfg.PDFToTextPath), cfg.ExtractTimeout)

	pipeline := indexer.NewPipeline(indexer.Options{
		RootDir:          folder,
		IndexDir:         indexDir,
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		Include:          cfg.Include,
		Exclude:          cfg.Exclude,
		RespectGitignore: cfg.RespectGitignore,
		Force:            indexFlags.force,
		ChangeDetection:  indexer.ChangeDetection(cfg.ChangeDetection),
		EmbedBatchSize:   cfg.EmbedBatchSize,
		EmbedConcurrency: cfg.Concurrency,
	}, store, embedder, extractor, logger)

	// Verbose logs already trace every file, so the bar is dropped.
	reporter := progress.NewReporter(progress.Options{Quiet: verbose, Output: cmd.ErrOrStderr()})
	tracker := progress.NewTracker(reporter)
	pipeline.SetProgressFunc(tracker.Update)

	logger.Info("indexing",
		zap.String("folder", folder),
		zap.String("index", indexDir),
		zap.String("model", embedder.Name()),
	)

	started := time.Now()
	result, err := pipeline.Run(ctx)
	tracker.Close()
	if result != nil {
		recordRun(ctx, indexDir, history.FromResult(result, err, started, embedder.Name(), indexFlags.force))
	}
	if err != nil {
		if errors.Is(err, indexer.ErrModelChanged) {
			return fmt.Errorf("%w\nRe-run with --force to rebuild the index with the new model", err)
		}
		if result == nil || !errors.Is(err, context.Canceled) {
			return fmt.Errorf("indexing failed: %w", err)
		}
		fmt.Fprintf(out, "\nIndexing interrupted; progress for %d files was saved.\n", result.FilesProcessed)
		return err
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Indexing complete!")
	fmt.Fprintf(out, "  Files found:      %d\n", result.FilesFound)
	fmt.Fprintf(out, "  Files processed:  %d\n", result.FilesProcessed)
	fmt.Fprintf(out, "  Files skipped:    %d (unchanged)\n", result.FilesSkipped)
	fmt.Fprintf(out, "  Files removed:    %d\n", result.FilesDeleted)
	fmt.Fprintf(out, "  Files failed:     %d\n", result.FilesFailed)
	fmt.Fprintf(out, "  Total chunks:     %d\n", stats.TotalChunks)
	fmt.Fprintf(out, "  Unique libraries: %d\n", stats.UniqueLibraries)
	fmt.Fprintf(out, "  Unique topics:    %d\n", stats.UniqueTopics)
	fmt.Fprintf(out, "  Duration:         %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Index:            %s\n", indexDir)
	if result.Recovered {
		fmt.Fprintln(out, "  Recovered from an interrupted run; every file was re-indexed.")
	}

	if len(result.Errors) > 0 {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "\nWarnings (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(errOut, "  - %v\n", e)
		}
	}

	return nil
}

// recordRun appends run to the index's history database. Failures are only
// logged since the index itself is already consistent.
func recordRun(ctx context.Context, indexDir string, run history.Run) {
	database, err := db.Open(filepath.Join(indexDir, db.FileName))
	if err != nil {
		logger.Warn("opening run history", zap.Error(err))
		return
	}
	defer database.Close()

	if _, err := history.NewStore(database).Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("recording index run", zap.String("run_id", run.ID), zap.Error(err))
	}
}
