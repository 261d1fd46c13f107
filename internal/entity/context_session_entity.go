package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationTurn is one exchange in the context-building sidebar.
type ConversationTurn struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type,omitempty"`
	At          time.Time `json:"at"`
}

type ContextSession struct {
	Id                  uuid.UUID
	ProjectId           uuid.UUID
	UserId              uuid.UUID
	ConversationHistory []ConversationTurn
	AccumulatedContext  string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}
