package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContextSession backs the conversational sidebar that builds up project
// context before orchestration. Concurrent saves are detected through the
// UpdatedAt timestamp.
type ContextSession struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId              uuid.UUID      `gorm:"type:uuid;not null;index"`
	ConversationHistory datatypes.JSON `gorm:"type:jsonb"`
	AccumulatedContext  string         `gorm:"type:text"`
	IsActive            bool           `gorm:"default:true;index"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

func (ContextSession) TableName() string {
	return "context_sessions"
}
