package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Title     string    `json:"title" validate:"required,min=1,max=500"`
}

type ChatResponse struct {
	Id        uuid.UUID  `json:"id"`
	ProjectId uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type CreateSessionRequest struct {
	FinalQuestion      string `json:"final_question" validate:"omitempty,max=20000"`
	AccumulatedContext string `json:"accumulated_context" validate:"omitempty,max=100000"`
}

type SessionResponse struct {
	Id                 uuid.UUID  `json:"id"`
	ChatId             uuid.UUID  `json:"chat_id"`
	OrderIndex         int        `json:"order_index"`
	PreviousSessionId  *uuid.UUID `json:"previous_session_id,omitempty"`
	AccumulatedContext string     `json:"accumulated_context"`
	FinalQuestion      string     `json:"final_question"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}
