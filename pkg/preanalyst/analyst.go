package preanalyst

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"orquix-backend/pkg/llm"
)

// Analysis is the structured interpretation of a raw user prompt.
type Analysis struct {
	InterpretedIntent      string   `json:"interpreted_intent"`
	ClarificationQuestions []string `json:"clarification_questions"`
	RefinedPromptCandidate string   `json:"refined_prompt_candidate"`
}

// NeedsClarification reports whether the prompt is too vague to execute:
// open questions remain and no refined prompt could be produced.
func (a *Analysis) NeedsClarification() bool {
	return len(a.ClarificationQuestions) > 0 && strings.TrimSpace(a.RefinedPromptCandidate) == ""
}

// Analyst interprets raw user prompts before orchestration: it extracts the
// intent, surfaces missing information as questions, and proposes a refined
// prompt when the input is already executable.
type Analyst struct {
	adapter llm.Adapter
	logger  *log.Logger
}

func New(adapter llm.Adapter, logger *log.Logger) *Analyst {
	return &Analyst{
		adapter: adapter,
		logger:  logger,
	}
}

// Analyze never fails hard: when the model is unreachable or returns garbage
// the raw prompt passes through unchanged as its own refined candidate.
func (a *Analyst) Analyze(ctx context.Context, userPrompt string) *Analysis {
	prompt := a.buildPrompt(userPrompt)

	raw, err := a.adapter.Generate(ctx, prompt, llm.Params{Temperature: 0.1, MaxTokens: 512})
	if err != nil {
		a.logger.Printf("[PRE_ANALYST] model call failed, passing prompt through: %v", err)
		return passthrough(userPrompt)
	}

	analysis, err := a.parseResponse(raw.Text)
	if err != nil {
		a.logger.Printf("[PRE_ANALYST] parse failed, passing prompt through: %v", err)
		return passthrough(userPrompt)
	}

	return analysis
}

func (a *Analyst) buildPrompt(userPrompt string) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You are a prompt analyst. Interpret the user's request before it is sent to multiple AI providers.\n")
	b.WriteString("If the request is specific enough to answer, produce a refined prompt and NO questions.\n")
	b.WriteString("If essential information is missing, list at most 3 short clarification questions and leave the refined prompt empty.\n")
	b.WriteString("Answer questions in the same language the user wrote in.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<user_prompt>\n")
	b.WriteString(userPrompt)
	b.WriteString("\n</user_prompt>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON:\n")
	b.WriteString("{\n")
	b.WriteString("  \"interpreted_intent\": \"one sentence describing what the user wants\",\n")
	b.WriteString("  \"clarification_questions\": [\"...\"],\n")
	b.WriteString("  \"refined_prompt_candidate\": \"improved prompt, or empty string if questions remain\"\n")
	b.WriteString("}\n")
	b.WriteString("</output_format>")

	return b.String()
}

func (a *Analyst) parseResponse(raw string) (*Analysis, error) {
	jsonContent := extractJSON(raw)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(jsonContent), &analysis); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	if strings.TrimSpace(analysis.InterpretedIntent) == "" {
		return nil, fmt.Errorf("empty interpreted_intent")
	}

	// A refined prompt and open questions together is contradictory output.
	// The refined prompt wins: the request is executable.
	if strings.TrimSpace(analysis.RefinedPromptCandidate) != "" {
		analysis.ClarificationQuestions = nil
	}
	return &analysis, nil
}

func passthrough(userPrompt string) *Analysis {
	return &Analysis{
		InterpretedIntent:      userPrompt,
		ClarificationQuestions: nil,
		RefinedPromptCandidate: userPrompt,
	}
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
