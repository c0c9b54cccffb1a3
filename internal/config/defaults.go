package config

import "time"

// FileName is the per-folder configuration file.
const FileName = ".seta.yml"

// ModelPreset is the default embedding model of a provider.
type ModelPreset struct {
	Model      string
	Dimensions int
}

var modelPresets = map[ProviderType]ModelPreset{
	ProviderOllama: {Model: "all-minilm", Dimensions: 384},
	ProviderOpenAI: {Model: "text-embedding-3-small", Dimensions: 1536},
	ProviderGoogle: {Model: "gemini-embedding-001", Dimensions: 768},
	ProviderStatic: {Model: "hash", Dimensions: 384},
}

// DefaultExcludes are glob patterns excluded from indexing by default.
var DefaultExcludes = []string{
	"**/node_modules/**",
	"**/vendor/**",
	"**/package-lock.json",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderOllama,
		OllamaURL:       "http://localhost:11434",
		ChunkSize:       1000,
		ChunkOverlap:    200,
		Exclude:         append([]string(nil), DefaultExcludes...),
		DBDir:           ".seta_index",
		ChangeDetection: "hash+mtime",
		ExtractTimeout:  30 * time.Second,
		PDFToTextPath:   "pdftotext",
		Concurrency:     4,
		EmbedBatchSize:  32,
	}
}

// GetPreset returns the default model of provider, or the Ollama preset for
// an unknown provider.
func GetPreset(provider ProviderType) ModelPreset {
	if p, ok := modelPresets[provider]; ok {
		return p
	}
	return modelPresets[ProviderOllama]
}

// ApplyPreset fills an unset model and width from the provider's preset. The
// width is only taken from the preset together with the model.
func (c *Config) ApplyPreset() {
	if c.Model != "" {
		return
	}
	preset := GetPreset(c.Provider)
	c.Model = preset.Model
	if c.Dimensions == 0 {
		c.Dimensions = preset.Dimensions
	}
}
