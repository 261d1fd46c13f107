package contextbuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"orquix-backend/pkg/llm"
)

type MessageType string

const (
	MessageTypeQuestion      MessageType = "question"
	MessageTypeInformation   MessageType = "information"
	MessageTypeClarification MessageType = "clarification"
	// MessageTypeReady is never produced by classification; the sidebar
	// answers with it when a question arrives over a complete context.
	MessageTypeReady MessageType = "ready"
)

// ConfidenceFloor is the minimum classification confidence at which the
// sidebar acts on a message. Below it the message becomes a clarification
// and the accumulated context is left untouched.
const ConfidenceFloor = 0.55

type Classification struct {
	Type       MessageType `json:"message_type"`
	Confidence float64     `json:"confidence"`
	Reply      string      `json:"reply"`
}

// Classifier decides whether a sidebar message contributes information,
// asks a question, or needs clarifying before anything is stored.
type Classifier struct {
	adapter llm.Adapter
	logger  *log.Logger
}

func NewClassifier(adapter llm.Adapter, logger *log.Logger) *Classifier {
	return &Classifier{
		adapter: adapter,
		logger:  logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, message string) *Classification {
	var classification *Classification

	raw, err := c.adapter.Generate(ctx, c.buildPrompt(message), llm.Params{Temperature: 0.1, MaxTokens: 256})
	if err != nil {
		c.logger.Printf("[CONTEXT_CLASSIFIER] model call failed, using heuristic: %v", err)
		classification = heuristicClassify(message)
	} else if classification, err = parseClassification(raw.Text); err != nil {
		c.logger.Printf("[CONTEXT_CLASSIFIER] parse failed, using heuristic: %v", err)
		classification = heuristicClassify(message)
	}

	if classification.Confidence < ConfidenceFloor {
		classification.Type = MessageTypeClarification
	}
	return classification
}

func (c *Classifier) buildPrompt(message string) string {
	var b strings.Builder

	b.WriteString("<system>\n")
	b.WriteString("You classify messages in a project context conversation.\n")
	b.WriteString("Types: 'information' (the user states facts about their situation), 'question' (the user asks something), 'clarification' (ambiguous, ask before storing).\n")
	b.WriteString("Reply in the same language the user wrote in.\n")
	b.WriteString("</system>\n\n")

	b.WriteString("<message>\n")
	b.WriteString(message)
	b.WriteString("\n</message>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON:\n")
	b.WriteString("{\n")
	b.WriteString("  \"message_type\": \"question|information|clarification\",\n")
	b.WriteString("  \"confidence\": 0.0,\n")
	b.WriteString("  \"reply\": \"short conversational acknowledgement or answer\"\n")
	b.WriteString("}\n")
	b.WriteString("</output_format>")

	return b.String()
}

func parseClassification(raw string) (*Classification, error) {
	jsonContent := extractJSON(raw)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var c Classification
	if err := json.Unmarshal([]byte(jsonContent), &c); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	switch c.Type {
	case MessageTypeQuestion, MessageTypeInformation, MessageTypeClarification:
	default:
		return nil, fmt.Errorf("unknown message_type %q", c.Type)
	}
	return &c, nil
}

// heuristicClassify covers classifier outages: question marks and short
// messages read as questions, longer statements as information.
func heuristicClassify(message string) *Classification {
	trimmed := strings.TrimSpace(message)

	if strings.HasSuffix(trimmed, "?") || len(strings.Fields(trimmed)) <= 4 {
		return &Classification{Type: MessageTypeQuestion, Confidence: 0.6}
	}
	if len(strings.Fields(trimmed)) > 15 {
		return &Classification{Type: MessageTypeInformation, Confidence: 0.6}
	}
	return &Classification{Type: MessageTypeQuestion, Confidence: 0.5}
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
