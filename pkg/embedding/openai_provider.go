package embedding

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client    *goopenai.Client
	model     string
	dimension int
}

var _ Provider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string, dimension int) *OpenAIProvider {
	if model == "" {
		model = string(goopenai.SmallEmbedding3)
	}
	if dimension == 0 {
		dimension = 1536
	}
	return &OpenAIProvider{
		client:    goopenai.NewClient(apiKey),
		model:     model,
		dimension: dimension,
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: texts,
		Model: goopenai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if len(d.Embedding) != p.dimension {
			return nil, fmt.Errorf("openai embeddings: dimension %d, want %d", len(d.Embedding), p.dimension)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (p *OpenAIProvider) Dimension() int {
	return p.dimension
}

func (p *OpenAIProvider) ModelName() string {
	return p.model
}
