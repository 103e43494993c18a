package main

import (
	"os"

	"github.com/rs/zerolog"

	"paperagent/internal/chunk"
	"paperagent/internal/config"
	"paperagent/internal/embedding"
	"paperagent/internal/llm"
	"paperagent/internal/manager"
	"paperagent/internal/pdf"
	"paperagent/internal/storage"
)

// newManager builds the manager and its collaborators from configuration.
// The returned close function releases the database.
func newManager() (*manager.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log := newLogger(cfg.LogLevel)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	chunker, err := chunk.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	embedder, completer := newProviders(cfg)
	extractor := pdf.NewExtractor(completer, log)

	m := manager.New(store, extractor, chunker, embedder, completer, cfg, log)
	return m, func() { store.Close() }, nil
}

// newProviders selects the embedding and completion backends. Simulation
// mode satisfies the same interfaces with deterministic output.
func newProviders(cfg config.Config) (embedding.Provider, llm.Provider) {
	if cfg.Provider == config.ProviderSimulation {
		return embedding.NewSim(cfg.EmbeddingDims), llm.NewSim()
	}
	embedder := embedding.NewOllama(
		embedding.WithBaseURL(cfg.OllamaURL),
		embedding.WithModel(cfg.EmbeddingModel),
		embedding.WithDimensions(cfg.EmbeddingDims),
	)
	completer := llm.NewOllama(
		llm.WithBaseURL(cfg.OllamaURL),
		llm.WithModel(cfg.LLMModel),
	)
	return embedder, completer
}

// newLogger builds the stderr logger used for best-effort warnings.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
