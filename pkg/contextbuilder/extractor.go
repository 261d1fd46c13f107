package contextbuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"orquix-backend/pkg/llm"
)

// Topics the extractor files facts under. Unknown topics from the model are
// folded into TopicGeneral.
const (
	TopicBusiness   = "negocio"
	TopicProblem    = "problema"
	TopicGoal       = "objetivo"
	TopicConstraint = "restricción"
	TopicMetric     = "métrica"
	TopicGeneral    = "información del usuario"
)

var knownTopics = map[string]bool{
	TopicBusiness:   true,
	TopicProblem:    true,
	TopicGoal:       true,
	TopicConstraint: true,
	TopicMetric:     true,
	TopicGeneral:    true,
}

// Extractor pulls discrete facts out of an information message and files
// them under a topic so the accumulated context stays structured.
type Extractor struct {
	adapter llm.Adapter
	logger  *log.Logger
}

func NewExtractor(adapter llm.Adapter, logger *log.Logger) *Extractor {
	return &Extractor{
		adapter: adapter,
		logger:  logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, message string) Facts {
	raw, err := e.adapter.Generate(ctx, e.buildPrompt(message), llm.Params{Temperature: 0.1, MaxTokens: 512})
	if err != nil {
		e.logger.Printf("[CONTEXT_EXTRACTOR] model call failed, storing message verbatim: %v", err)
		return identityFacts(message)
	}

	facts, err := parseFacts(raw.Text)
	if err != nil {
		e.logger.Printf("[CONTEXT_EXTRACTOR] parse failed, storing message verbatim: %v", err)
		return identityFacts(message)
	}

	return facts
}

func (e *Extractor) buildPrompt(message string) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You extract concrete facts from a user message and file each fact under one topic.\n")
	fmt.Fprintf(&b, "Topics: %q, %q, %q, %q, %q. Keep facts in the user's own language, one short sentence each.\n",
		TopicBusiness, TopicProblem, TopicGoal, TopicConstraint, TopicMetric)
	b.WriteString("Do not invent facts. Omit topics with nothing to file.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<message>\n")
	b.WriteString(message)
	b.WriteString("\n</message>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON mapping topic to facts:\n")
	b.WriteString("{\"negocio\": [\"...\"], \"objetivo\": [\"...\"]}\n")
	b.WriteString("</output_format>")

	return b.String()
}

func parseFacts(raw string) (Facts, error) {
	jsonContent := extractJSON(raw)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed map[string][]string
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	facts := make(Facts)
	for topic, items := range parsed {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if !knownTopics[topic] {
			topic = TopicGeneral
		}
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				facts[topic] = append(facts[topic], item)
			}
		}
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("no facts extracted")
	}
	return facts, nil
}

// identityFacts preserves the raw message when structured extraction is
// unavailable. Nothing the user said is ever dropped.
func identityFacts(message string) Facts {
	return Facts{TopicGeneral: []string{strings.TrimSpace(message)}}
}
