package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/seta/internal/walker"
)

// EnvPrefix prefixes environment overrides, e.g. SETA_CHUNK_SIZE.
const EnvPrefix = "SETA_"

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConflictingPatterns is returned when a pattern is both included
	// and excluded.
	ErrConflictingPatterns = errors.New("pattern is both included and excluded")
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SETA_*). A missing file yields defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// SETA_CHUNK_SIZE -> chunk_size, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// LoadForFolder loads the .seta.yml of a documentation folder.
func LoadForFolder(folder string) (*Config, error) {
	return Load(filepath.Join(folder, FileName))
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// IndexDir resolves where the index of folder lives: dbPath when set,
// otherwise db_dir, which is taken relative to folder unless absolute.
func (c *Config) IndexDir(folder, dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	if filepath.IsAbs(c.DBDir) {
		return c.DBDir
	}
	return filepath.Join(folder, c.DBDir)
}

var validProviders = map[ProviderType]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
	ProviderGoogle: true,
	ProviderStatic: true,
}

var validChangeDetection = map[string]bool{
	"hash+mtime": true,
	"hash":       true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validProviders[c.Provider] {
		return fmt.Errorf("%w: provider %q must be one of ollama, openai, google, static", ErrInvalidConfig, c.Provider)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("%w: dimensions must be non-negative", ErrInvalidConfig)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must be non-negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.DBDir == "" {
		return fmt.Errorf("%w: db_dir is required", ErrInvalidConfig)
	}
	if !validChangeDetection[c.ChangeDetection] {
		return fmt.Errorf("%w: change_detection %q must be hash+mtime or hash", ErrInvalidConfig, c.ChangeDetection)
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("%w: extract_timeout must be positive", ErrInvalidConfig)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must be non-negative", ErrInvalidConfig)
	}
	if c.EmbedBatchSize < 0 {
		return fmt.Errorf("%w: embed_batch_size must be non-negative", ErrInvalidConfig)
	}

	if err := walker.ValidatePatterns(c.Include); err != nil {
		return fmt.Errorf("%w: include: %v", ErrInvalidConfig, err)
	}
	if err := walker.ValidatePatterns(c.Exclude); err != nil {
		return fmt.Errorf("%w: exclude: %v", ErrInvalidConfig, err)
	}
	excluded := make(map[string]bool, len(c.Exclude))
	for _, p := range c.Exclude {
		excluded[p] = true
	}
	for _, p := range c.Include {
		if excluded[p] {
			return fmt.Errorf("%w: %q", ErrConflictingPatterns, p)
		}
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
