package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/seta/internal/config"
	"github.com/ziadkadry99/seta/internal/embeddings"
	"github.com/ziadkadry99/seta/internal/indexer"
	"github.com/ziadkadry99/seta/internal/vectordb"
)

// vectorsDirName is the chromem-go database inside the index directory.
const vectorsDirName = "vectors"

// folderArg returns args[i], or the working directory when absent.
func folderArg(args []string, i int) (string, error) {
	folder := "."
	if len(args) > i {
		folder = args[i]
	}
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("resolving folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", folder)
	}
	return abs, nil
}

// loadConfig loads the folder's config and applies the command-line
// overrides the user actually set.
func loadConfig(cmd *cobra.Command, folder string) (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(folder, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `seta init` to create a config file", err)
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = config.ProviderType(indexFlags.provider)
		if !flags.Changed("model") {
			cfg.Model = ""
			cfg.Dimensions = 0
		}
	}
	if flags.Changed("model") {
		cfg.Model = indexFlags.model
		cfg.Dimensions = 0
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = indexFlags.chunkSize
	}
	if flags.Changed("chunk-overlap") {
		cfg.ChunkOverlap = indexFlags.chunkOverlap
	}
	if flags.Changed("include") {
		cfg.Include = indexFlags.include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, indexFlags.exclude...)
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = indexFlags.concurrency
	}

	cfg.ApplyPreset()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// This is the shared version used by index, search, and serve commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	var embedder embeddings.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		embedder = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Model), cfg.BaseURL, cfg.Dimensions)
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is required for Google embeddings")
		}
		embedder = embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(cfg.Model), cfg.Dimensions)
	case config.ProviderStatic:
		embedder = embeddings.NewStaticEmbedder(cfg.Dimensions)
	default:
		embedder = embeddings.NewOllamaEmbedder(cfg.Model, cfg.Dimensions, cfg.OllamaURL)
	}
	return embedder, nil
}

// openStore opens the vector database inside indexDir.
func openStore(indexDir string) (*vectordb.ChromemStore, error) {
	store, err := vectordb.NewChromemStore(vectordb.ChromemConfig{Dir: filepath.Join(indexDir, vectorsDirName)}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	return store, nil
}

// indexExists reports whether indexDir holds a seta index.
func indexExists(indexDir string) bool {
	for _, name := range []string{indexer.StateFileName, vectorsDirName} {
		if _, err := os.Stat(filepath.Join(indexDir, name)); err == nil {
			return true
		}
	}
	return false
}

// checkIndexModel rejects querying an index with a different model than
// the one that built it.
func checkIndexModel(state *indexer.IndexState, embedder embeddings.Embedder) error {
	if state.EmbeddingModel == "" {
		return nil
	}
	if state.EmbeddingModel != embedder.Name() || state.Dimensions != embedder.Dimensions() {
		return fmt.Errorf("%w: index was built with %s/%d, configured %s/%d",
			indexer.ErrModelChanged, state.EmbeddingModel, state.Dimensions, embedder.Name(), embedder.Dimensions())
	}
	return nil
}
