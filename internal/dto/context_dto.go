package dto

import (
	"time"

	"github.com/google/uuid"
)

type ContextMessageRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Content   string     `json:"content" validate:"required,min=1,max=10000"`
}

type ContextMessageResponse struct {
	SessionId            uuid.UUID `json:"session_id"`
	MessageType          string    `json:"message_type"`
	Reply                string    `json:"reply,omitempty"`
	Suggestions          []string  `json:"suggestions,omitempty"`
	ContextPreview       string    `json:"context_preview"`
	ContextElementsCount int       `json:"context_elements_count"`
	Ready                bool      `json:"ready"`
}

type FinalizeContextRequest struct {
	SessionId     uuid.UUID `json:"session_id" validate:"required"`
	FinalQuestion string    `json:"final_question" validate:"required,min=1"`
}

type FinalizeContextResponse struct {
	InteractionEventId uuid.UUID `json:"interaction_event_id"`
	PackagedQuery      string    `json:"packaged_query"`
}

type ContextSessionResponse struct {
	Id                 uuid.UUID              `json:"id"`
	ProjectId          uuid.UUID              `json:"project_id"`
	AccumulatedContext string                 `json:"accumulated_context"`
	History            []ConversationTurnDTO  `json:"history"`
	IsActive           bool                   `json:"is_active"`
	CreatedAt          time.Time              `json:"created_at"`
}

type ConversationTurnDTO struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type,omitempty"`
	At          time.Time `json:"at"`
}
