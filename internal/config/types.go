package config

import "time"

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	// ProviderStatic hashes text locally. It needs no model server and is
	// meant for offline use and tests.
	ProviderStatic ProviderType = "static"
)

// Config is the top-level seta configuration, corresponding to .seta.yml.
type Config struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
	OllamaURL  string       `yaml:"ollama_url" koanf:"ollama_url"`
	BaseURL    string       `yaml:"base_url,omitempty" koanf:"base_url"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	Include          []string `yaml:"include" koanf:"include"`
	Exclude          []string `yaml:"exclude" koanf:"exclude"`
	RespectGitignore bool     `yaml:"respect_gitignore" koanf:"respect_gitignore"`

	DBDir           string        `yaml:"db_dir" koanf:"db_dir"`
	ChangeDetection string        `yaml:"change_detection" koanf:"change_detection"`
	ExtractTimeout  time.Duration `yaml:"extract_timeout" koanf:"extract_timeout"`
	PDFToTextPath   string        `yaml:"pdftotext_path" koanf:"pdftotext_path"`

	Concurrency       int  `yaml:"concurrency" koanf:"concurrency"`
	EmbedBatchSize    int  `yaml:"embed_batch_size" koanf:"embed_batch_size"`
	EmbeddingFallback bool `yaml:"embedding_fallback" koanf:"embedding_fallback"`
}
