package llm

import (
	"context"
)

// Params carries the per-call generation parameters in a provider-agnostic form.
type Params struct {
	Temperature float64
	MaxTokens   int
	Model       string // override the adapter's default model
}

// Result is a successful provider answer.
type Result struct {
	Text      string
	LatencyMs int64
}

// Adapter is the uniform call surface over one LLM provider.
// Adapters are stateless and safe for concurrent use; each owns its
// HTTP client and credentials.
type Adapter interface {
	// Name returns the stable provider name used as registry key and
	// persisted on IAResponse rows.
	Name() string

	// Generate sends a single prompt and returns the response text.
	// Failures are always *ProviderError.
	Generate(ctx context.Context, prompt string, params Params) (*Result, error)

	// Health reports whether the provider is reachable with the
	// configured credentials.
	Health(ctx context.Context) error
}
