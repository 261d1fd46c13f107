package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IAResponse stores one provider outcome per orchestration cycle. Exactly
// one of ResponseText and ErrorMessage is set.
type IAResponse struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InteractionEventId uuid.UUID      `gorm:"type:uuid;not null;index"`
	IaPromptId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	IaProviderName     string         `gorm:"type:varchar(50);not null"`
	ResponseText       *string        `gorm:"type:text"`
	ErrorMessage       *string        `gorm:"type:text"`
	LatencyMs          int64          `gorm:"default:0"`
	ReceivedAt         time.Time      `gorm:"autoCreateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (IAResponse) TableName() string {
	return "ia_responses"
}
