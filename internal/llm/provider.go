// Package llm generates an optional natural-language summary of a finished
// report. The summary is informational only: it runs after classification,
// matching, and merging are complete and none of its output feeds back into
// them.
package llm

import (
	"context"
	"fmt"

	"github.com/ankidiff/ankidiff/internal/model"
)

// Provider is one LLM backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete returns the model's completion for a prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// newProvider selects a provider from configuration.
func newProvider(cfg model.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIProvider(cfg)
	case "ollama":
		return newOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, ollama)", cfg.Provider)
	}
}
