package openai

import (
	"context"
	"time"

	"orquix-backend/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client    *goopenai.Client
	modelName string
}

var _ llm.Adapter = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, modelName string) *OpenAIProvider {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		client:    goopenai.NewClient(apiKey),
		modelName: modelName,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, params llm.Params) (*llm.Result, error) {
	model := p.modelName
	if params.Model != "" {
		model = params.Model
	}

	req := goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(params.Temperature),
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &llm.ProviderError{
			Provider: p.Name(),
			Kind:     llm.KindUpstream,
			Message:  "empty choices in completion response",
		}
	}

	return &llm.Result{
		Text:      resp.Choices[0].Message.Content,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (p *OpenAIProvider) Health(ctx context.Context) error {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		return classifyOpenAIError(err)
	}
	return nil
}

func classifyOpenAIError(err error) *llm.ProviderError {
	if apiErr, ok := err.(*goopenai.APIError); ok {
		return &llm.ProviderError{
			Provider: "openai",
			Kind:     llm.ClassifyStatus(apiErr.HTTPStatusCode),
			Message:  apiErr.Message,
		}
	}
	return llm.Classify("openai", err)
}
