package moderator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"orquix-backend/pkg/llm"
)

type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
	QualityFailed Quality = "failed"
)

const DefaultStrategy = "extractive_enhanced"

// ProviderAnswer is one successful provider response to synthesize.
type ProviderAnswer struct {
	Provider string
	Text     string
}

// FailureNote is the redacted record of a failed provider. The moderator
// never sees raw upstream error bodies.
type FailureNote struct {
	Provider string
	Kind     string
}

type Options struct {
	Strategy              string
	Personality           string
	Temperature           float64
	LengthPenalty         float64
	MaxSynthesisWords     int
	IncludeContradictions bool
	IncludeReferences     bool
}

func DefaultOptions() Options {
	return Options{
		Strategy:              DefaultStrategy,
		Personality:           "Analytical",
		Temperature:           0.3,
		LengthPenalty:         0.5,
		MaxSynthesisWords:     250,
		IncludeContradictions: true,
		IncludeReferences:     true,
	}
}

// Response is the moderated synthesis of all provider answers.
type Response struct {
	SynthesisText    string              `json:"synthesis_text"`
	KeyThemes        []string            `json:"key_themes"`
	ConsensusAreas   []string            `json:"consensus_areas"`
	Contradictions   []string            `json:"contradictions"`
	SourceReferences map[string][]string `json:"source_references"`
	Quality          Quality             `json:"quality"`
	FallbackUsed     bool                `json:"fallback_used"`
}

// Moderator combines N provider answers into one narrative with themes,
// consensus, contradictions and per-provider references.
type Moderator struct {
	adapter llm.Adapter
	logger  *log.Logger
}

func New(adapter llm.Adapter, logger *log.Logger) *Moderator {
	return &Moderator{
		adapter: adapter,
		logger:  logger,
	}
}

// Synthesize never fails: when the synthesizer is unreachable it degrades to
// the deterministic fallback, and with zero answers it reports quality=failed.
func (m *Moderator) Synthesize(ctx context.Context, query string, answers []ProviderAnswer, failures []FailureNote, opts Options) *Response {
	if opts.MaxSynthesisWords <= 0 {
		opts.MaxSynthesisWords = 250
	}
	if opts.Strategy == "" {
		opts.Strategy = DefaultStrategy
	}

	if len(answers) == 0 {
		return failedResponse(failures)
	}

	prompt := m.buildPrompt(query, answers, failures, opts)
	raw, err := m.adapter.Generate(ctx, prompt, llm.Params{
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxSynthesisWords * 4,
	})
	if err != nil {
		m.logger.Printf("[MODERATOR] synthesizer call failed, using fallback: %v", err)
		return Fallback(answers, opts)
	}

	resp, err := m.parseResponse(raw.Text, answers)
	if err != nil {
		m.logger.Printf("[MODERATOR] parse failed, using fallback: %v", err)
		return Fallback(answers, opts)
	}

	resp.SynthesisText = capWords(resp.SynthesisText, opts.MaxSynthesisWords)
	resp.Quality = grade(len(answers), resp)
	return resp
}

func (m *Moderator) buildPrompt(query string, answers []ProviderAnswer, failures []FailureNote, opts Options) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	fmt.Fprintf(&b, "You are an %s AI moderator. You synthesize multiple AI responses into one cohesive narrative.\n", opts.Personality)
	b.WriteString("You do NOT add new claims. Every claim you keep must be attributable to at least one source response.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<user_query>\n")
	b.WriteString(query)
	b.WriteString("\n</user_query>\n\n")

	b.WriteString("<source_responses>\n")
	for _, a := range answers {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", a.Provider, a.Text)
	}
	b.WriteString("</source_responses>\n\n")

	if len(failures) > 0 {
		b.WriteString("<unavailable_providers>\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "%s: %s\n", f.Provider, f.Kind)
		}
		b.WriteString("</unavailable_providers>\n\n")
	}

	b.WriteString("<instructions>\n")
	fmt.Fprintf(&b, "Strategy: %s. Write a synthesis of at most %d words.\n", opts.Strategy, opts.MaxSynthesisWords)
	b.WriteString("Identify key themes, areas where the sources agree, and")
	if opts.IncludeContradictions {
		b.WriteString(" explicit contradictions between them.\n")
	} else {
		b.WriteString(" leave contradictions empty.\n")
	}
	if opts.IncludeReferences {
		b.WriteString("For every retained point, record which provider(s) support it in source_references.\n")
	}
	if opts.LengthPenalty > 0.7 {
		b.WriteString("Be brief. Prefer the shortest formulation that preserves meaning.\n")
	}
	b.WriteString("</instructions>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON:\n")
	b.WriteString("{\n")
	b.WriteString("  \"synthesis_text\": \"...\",\n")
	b.WriteString("  \"key_themes\": [\"...\"],\n")
	b.WriteString("  \"consensus_areas\": [\"...\"],\n")
	b.WriteString("  \"contradictions\": [\"...\"],\n")
	b.WriteString("  \"source_references\": {\"provider_name\": [\"point\"]}\n")
	b.WriteString("}\n")
	b.WriteString("</output_format>")

	return b.String()
}

func (m *Moderator) parseResponse(raw string, answers []ProviderAnswer) (*Response, error) {
	jsonContent := extractJSON(raw)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var resp Response
	if err := json.Unmarshal([]byte(jsonContent), &resp); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if strings.TrimSpace(resp.SynthesisText) == "" {
		return nil, fmt.Errorf("empty synthesis_text")
	}

	// Every synthesis with at least one answer must carry references.
	if len(resp.SourceReferences) == 0 {
		resp.SourceReferences = make(map[string][]string)
		for _, a := range answers {
			resp.SourceReferences[a.Provider] = []string{firstSentence(a.Text)}
		}
	}
	return &resp, nil
}

// grade applies the quality ladder: two agreeing providers with no open
// contradictions is high, partial coverage is medium, one provider is low.
func grade(answerCount int, resp *Response) Quality {
	switch {
	case answerCount == 0:
		return QualityFailed
	case answerCount == 1:
		return QualityLow
	case len(resp.ConsensusAreas) > 0 && len(resp.Contradictions) == 0:
		return QualityHigh
	default:
		return QualityMedium
	}
}

func failedResponse(failures []FailureNote) *Response {
	var b strings.Builder
	b.WriteString("No provider responses were available for synthesis.")
	if len(failures) > 0 {
		b.WriteString(" Failures: ")
		parts := make([]string, len(failures))
		for i, f := range failures {
			parts[i] = fmt.Sprintf("%s (%s)", f.Provider, f.Kind)
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}

	return &Response{
		SynthesisText:    b.String(),
		KeyThemes:        []string{},
		ConsensusAreas:   []string{},
		Contradictions:   []string{},
		SourceReferences: map[string][]string{},
		Quality:          QualityFailed,
		FallbackUsed:     true,
	}
}

func capWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ")
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for _, sep := range []string{". ", "\n"} {
		if idx := strings.Index(text, sep); idx > 0 {
			return text[:idx+1]
		}
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
