package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"orquix-backend/pkg/llm"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

type AnthropicProvider struct {
	BaseURL   string
	ApiKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Adapter = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	if modelName == "" {
		modelName = "claude-3-5-haiku-latest"
	}
	return &AnthropicProvider{
		BaseURL:   defaultBaseURL,
		ApiKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// --- Interface Implementation ---

func (a *AnthropicProvider) Name() string {
	return "anthropic"
}

func (a *AnthropicProvider) Generate(ctx context.Context, prompt string, params llm.Params) (*llm.Result, error) {
	model := a.ModelName
	if params.Model != "" {
		model = params.Model
	}

	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024 // the messages API requires max_tokens
	}

	reqPayload := messagesRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: params.Temperature,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := a.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.ApiKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, llm.Classify(a.Name(), err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, llm.FromStatus(a.Name(), resp.StatusCode, string(bodyBytes))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(bodyBytes, &msgResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	var text string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: a.Name(),
			Kind:     llm.KindUpstream,
			Message:  "no text content in response",
		}
	}

	return &llm.Result{
		Text:      text,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (a *AnthropicProvider) Health(ctx context.Context) error {
	// Minimal request; only non-transient failures (auth, bad request)
	// mark the provider unhealthy.
	_, err := a.Generate(ctx, "ping", llm.Params{MaxTokens: 1})
	if pe, ok := err.(*llm.ProviderError); ok && !pe.Retryable() {
		return pe
	}
	return nil
}
