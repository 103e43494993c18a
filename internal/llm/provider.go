// Package llm provides text completion through a language model.
package llm

import "context"

// Provider generates text completions. The simulation backend satisfies the
// same contract as a live backend; callers cannot distinguish them at the
// interface level.
type Provider interface {
	// Complete generates a completion for prompt, bounded to roughly
	// maxTokens output tokens.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// ModelName returns the name of the language model.
	ModelName() string
}
