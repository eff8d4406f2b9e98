package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "clausecheck.yaml"
	// DirName holds the fallback config file and the default archive.
	DirName = ".clausecheck"
)

// Config holds all configuration for clausecheck.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	LLM       LLMConfig       `yaml:"llm"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkingConfig sizes are in characters (runes).
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "tfidf" or "openai"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url"`    // empty uses the OpenAI default
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BatchSize int    `yaml:"batch_size"`
	Stem      bool   `yaml:"stem"` // tfidf only: match terms on their Porter stem
}

// IndexConfig selects the vector store backend.
type IndexConfig struct {
	Backend string `yaml:"backend"` // "memory" or "chromem"
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	Query string `yaml:"query"`
	TopK  int    `yaml:"top_k"`
	// Expand adds contract-risk keywords to the query text searched by
	// the tfidf embedder. Remote embedders always search the plain query.
	Expand bool `yaml:"expand"`
}

// LLMConfig holds the review model and where its credentials come from.
type LLMConfig struct {
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURLEnv     string `yaml:"base_url_env"`
	DefaultBaseURL string `yaml:"default_base_url"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

type InputConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

type OutputConfig struct {
	Format string `yaml:"format"` // text, markdown, html or json
}

// ArchiveConfig controls the review history file. An empty Path uses
// ~/.clausecheck/archive.db.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:    700,
			ChunkOverlap: 100,
		},
		Embedding: EmbeddingConfig{
			Provider:  "tfidf",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 64,
		},
		Index: IndexConfig{
			Backend: "memory",
		},
		Retrieve: RetrieveConfig{
			Query: "Identify illegal or unfair clauses, flag them, and suggest fair replacements.",
			TopK:   3,
			Expand: true,
		},
		LLM: LLMConfig{
			Model:          "deepseek/deepseek-r1-0528:free",
			APIKeyEnv:      "OPENAI_API_KEY",
			BaseURLEnv:     "OPENAI_BASE_URL",
			DefaultBaseURL: "https://openrouter.ai/api/v1/",
			TimeoutSecs:    30,
		},
		Input: InputConfig{
			Includes: []string{"**/*.txt", "**/*.md", "**/*.pdf", "**/*.docx"},
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for clausecheck.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, DirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunking.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize))
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		errs = append(errs, fmt.Errorf("chunking.chunk_overlap must be in [0, chunk_size), got %d", c.Chunking.ChunkOverlap))
	}
	switch c.Embedding.Provider {
	case "tfidf", "openai":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be tfidf or openai, got %q", c.Embedding.Provider))
	}
	switch c.Index.Backend {
	case "memory", "chromem":
	default:
		errs = append(errs, fmt.Errorf("index.backend must be memory or chromem, got %q", c.Index.Backend))
	}
	if c.Retrieve.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK))
	}
	if c.LLM.TimeoutSecs <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout_secs must be positive, got %d", c.LLM.TimeoutSecs))
	}
	switch strings.ToLower(c.Output.Format) {
	case "text", "markdown", "md", "html", "json":
	default:
		errs = append(errs, fmt.Errorf("output.format must be text, markdown, html or json, got %q", c.Output.Format))
	}
	return errors.Join(errs...)
}

// ArchivePath returns the configured archive file, defaulting to the user's
// home directory.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, DirName, "archive.db"), nil
}

// EnsureDir ensures the .clausecheck directory exists under dir.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, DirName), 0755)
}
