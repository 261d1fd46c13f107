package embedding

import "context"

// Provider defines the interface for generating text embeddings.
// Implementations must be deterministic per model identifier.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelName() string
}
