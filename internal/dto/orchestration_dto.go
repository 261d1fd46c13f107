package dto

import (
	"time"

	"github.com/google/uuid"
)

type OrchestrationQueryRequest struct {
	ProjectId        uuid.UUID `json:"project_id" validate:"required"`
	UserPromptText   string    `json:"user_prompt_text" validate:"required,min=1,max=20000"`
	IncludeContext   *bool     `json:"include_context"`
	ConversationMode string    `json:"conversation_mode" validate:"omitempty,oneof=auto continue new"`
	ChatId           *uuid.UUID `json:"chat_id"`
	SessionId        *uuid.UUID `json:"clarification_session_id"`
}

// IncludeContextOrDefault defaults context retrieval to on.
func (r *OrchestrationQueryRequest) IncludeContextOrDefault() bool {
	if r.IncludeContext == nil {
		return true
	}
	return *r.IncludeContext
}

type ProviderResponseDTO struct {
	Provider     string  `json:"provider"`
	ResponseText *string `json:"response_text,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	LatencyMs    int64   `json:"latency_ms"`
}

type SynthesisDTO struct {
	SynthesisText    string              `json:"synthesis_text"`
	Quality          string              `json:"quality"`
	KeyThemes        []string            `json:"key_themes"`
	ConsensusAreas   []string            `json:"consensus_areas"`
	Contradictions   []string            `json:"contradictions"`
	SourceReferences map[string][]string `json:"source_references"`
	FallbackUsed     bool                `json:"fallback_used"`
}

type ContinuityAnalysisDTO struct {
	QueryType          string   `json:"query_type"`
	Confidence         float64  `json:"confidence"`
	ContextualKeywords []string `json:"contextual_keywords,omitempty"`
	PreviousEventId    string   `json:"previous_interaction_id,omitempty"`
}

type ContextUsedDTO struct {
	Documents            []string `json:"documents"`
	PreviousInteractions []string `json:"previous_interactions"`
}

type OrchestrationQueryResponse struct {
	InteractionEventId    uuid.UUID              `json:"interaction_event_id"`
	SynthesisText         string                 `json:"synthesis_text"`
	Synthesis             *SynthesisDTO          `json:"synthesis,omitempty"`
	AiResponses           []ProviderResponseDTO  `json:"ai_responses"`
	ContinuityAnalysis    *ContinuityAnalysisDTO `json:"continuity_analysis,omitempty"`
	ContextUsed           *ContextUsedDTO        `json:"context_used,omitempty"`
	ClarifyingQuestions   []string               `json:"clarifying_questions,omitempty"`
	ClarificationSession  string                 `json:"clarification_session_id,omitempty"`
	ProcessingTimeMs      int64                  `json:"processing_time_ms"`
	Timestamp             time.Time              `json:"timestamp"`
}

type InteractionHistoryItem struct {
	Id            uuid.UUID `json:"id"`
	EventType     string    `json:"event_type"`
	Content       string    `json:"content"`
	SynthesisText string    `json:"synthesis_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
