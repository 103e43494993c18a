// Package embedding provides vector embedding generation for text.
package embedding

import "context"

// Provider generates embeddings from text. Implementations must be
// deterministic for identical input under a fixed model configuration,
// and must produce vectors of exactly Dimensions() entries.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the vector dimensionality. It is a fixed property
	// of the provider, queried once and assumed constant for its lifetime.
	Dimensions() int
}
