package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event types recorded on an interaction.
const (
	EventTypeUserPrompt    = "user_prompt"
	EventTypeClarification = "clarification"
	EventTypeContextFinal  = "context_finalized"
)

// IAPrompt lifecycle.
const (
	PromptStatusGenerated = "generated"
	PromptStatusEdited    = "edited"
	PromptStatusExecuted  = "executed"
)

// InteractionEvent is the envelope row of one recorded interaction.
// AiResponses and ModeratorSynthesis are denormalized snapshots stored as
// JSON on the event, so history reads need no joins.
type InteractionEvent struct {
	Id                 uuid.UUID
	ProjectId          uuid.UUID
	UserId             uuid.UUID
	SessionId          *uuid.UUID
	EventType          string
	Content            string
	EventData          map[string]interface{}
	AiResponses        []*IAResponse
	ModeratorSynthesis *ModeratedSynthesis
	ContextUsed        bool
	ContextPreview     string
	ProcessingTimeMs   int64
	CreatedAt          time.Time
}

// IAPrompt is the provider-ready prompt built for one cycle. PromptText is
// the generated package; OriginalQuery keeps the user's raw wording, and
// EditedPrompt holds the user's revision when IsEdited is set.
type IAPrompt struct {
	Id                 uuid.UUID
	InteractionEventId uuid.UUID
	ProjectId          uuid.UUID
	ContextSessionId   *uuid.UUID
	OriginalQuery      string
	PromptText         string
	IsEdited           bool
	EditedPrompt       *string
	Status             string
	EstimatedTokens    int
	CreatedAt          time.Time
}

// IAResponse holds one provider outcome. Exactly one of ResponseText and
// ErrorMessage is non-nil.
type IAResponse struct {
	Id                 uuid.UUID `json:"id"`
	InteractionEventId uuid.UUID `json:"interaction_event_id"`
	IaPromptId         uuid.UUID `json:"ia_prompt_id"`
	IaProviderName     string    `json:"ia_provider_name"`
	ResponseText       *string   `json:"response_text"`
	ErrorMessage       *string   `json:"error_message"`
	LatencyMs          int64     `json:"latency_ms"`
	ReceivedAt         time.Time `json:"received_at"`
}

// Succeeded reports whether the provider produced usable text.
func (r *IAResponse) Succeeded() bool {
	return r.ResponseText != nil && *r.ResponseText != ""
}

type ModeratedSynthesis struct {
	Id                 uuid.UUID           `json:"id"`
	InteractionEventId uuid.UUID           `json:"interaction_event_id"`
	SynthesisText      string              `json:"synthesis_text"`
	Quality            string              `json:"quality"`
	KeyThemes          []string            `json:"key_themes"`
	ConsensusAreas     []string            `json:"consensus_areas"`
	Contradictions     []string            `json:"contradictions"`
	SourceReferences   map[string][]string `json:"source_references"`
	FallbackUsed       bool                `json:"fallback_used"`
	CreatedAt          time.Time           `json:"created_at"`
}
