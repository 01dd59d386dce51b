package generator

import (
	"context"
	"time"
)

// LLMClient abstracts the model provider so it can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt, opts Options) (string, error)
}

// LLMSettings is the provider configuration handed to concrete clients.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// Options are the generation parameters applied to every stage call.
type Options struct {
	Temperature      float64
	MaxTokens        int64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	Seed             int64
	Timeout          time.Duration
	// JSON asks the provider to constrain output to JSON where it can.
	JSON bool
}

// DefaultOptions mirrors the settings the service ships with.
func DefaultOptions() Options {
	return Options{
		Temperature:      0.7,
		MaxTokens:        5000,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
		Seed:             42,
		Timeout:          180 * time.Second,
		JSON:             true,
	}
}
