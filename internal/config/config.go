// Package config handles loading and validating the assistant configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"paperagent/internal/paper"
)

// Provider backend names.
const (
	ProviderOllama     = "ollama"
	ProviderSimulation = "simulation"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pa"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DefaultDBFile is the library database file name under the data dir.
	DefaultDBFile = "library.db"
)

// Config is the assistant configuration. It is loaded once at startup and
// passed into each component's constructor; nothing reads it ambiently.
type Config struct {
	DBPath string `yaml:"db_path,omitempty"`

	// Provider selects the embedding/LLM backend: "ollama" or "simulation".
	Provider string `yaml:"provider,omitempty"`

	OllamaURL      string `yaml:"ollama_url,omitempty"`
	EmbeddingModel string `yaml:"embedding_model,omitempty"`
	EmbeddingDims  int    `yaml:"embedding_dimensions,omitempty"`
	LLMModel       string `yaml:"llm_model,omitempty"`

	ChunkSize    int `yaml:"chunk_size,omitempty"`
	ChunkOverlap int `yaml:"chunk_overlap,omitempty"`

	TopK            int `yaml:"top_k,omitempty"`
	MaxContextChars int `yaml:"max_context_chars,omitempty"`
	MaxAnswerTokens int `yaml:"max_answer_tokens,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		DBPath:          defaultDBPath(),
		Provider:        ProviderOllama,
		OllamaURL:       "http://localhost:11434",
		EmbeddingModel:  "all-minilm:l6-v2",
		EmbeddingDims:   384,
		LLMModel:        "llama3.2",
		ChunkSize:       1000,
		ChunkOverlap:    200,
		TopK:            5,
		MaxContextChars: 10000,
		MaxAnswerTokens: 500,
		LogLevel:        "warn",
	}
}

// Path returns the config file path. PA_CONFIG overrides; otherwise
// $XDG_CONFIG_HOME/pa/config.yml, defaulting XDG_CONFIG_HOME to ~/.config.
func Path() string {
	if p := os.Getenv("PA_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file, applies env overrides, and validates.
// A missing file is not an error; defaults apply.
func Load() (Config, error) {
	cfg := Default()

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%w: parsing %s: %v", paper.ErrConfiguration, path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv applies environment overrides on top of the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PA_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.OllamaURL = v
	}
	if v := os.Getenv("PA_EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("PA_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("PA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", paper.ErrConfiguration, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", paper.ErrConfiguration, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			paper.ErrConfiguration, c.ChunkOverlap, c.ChunkSize)
	}
	if c.Provider != ProviderOllama && c.Provider != ProviderSimulation {
		return fmt.Errorf("%w: unknown provider %q (valid: %s, %s)",
			paper.ErrConfiguration, c.Provider, ProviderOllama, ProviderSimulation)
	}
	if c.EmbeddingDims <= 0 {
		return fmt.Errorf("%w: embedding_dimensions must be positive, got %d", paper.ErrConfiguration, c.EmbeddingDims)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", paper.ErrConfiguration, c.TopK)
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("%w: max_context_chars must be positive, got %d", paper.ErrConfiguration, c.MaxContextChars)
	}
	return nil
}

// defaultDBPath returns $XDG_DATA_HOME/pa/library.db, defaulting
// XDG_DATA_HOME to ~/.local/share.
func defaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultDBFile
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, ConfigDir, DefaultDBFile)
}
