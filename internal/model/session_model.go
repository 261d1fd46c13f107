package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is one orchestration turn inside a chat. Sessions chain through
// PreviousSessionId to inherit accumulated context; OrderIndex is unique per
// chat and a previous session always has a smaller index in the same chat.
type Session struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId             uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:ux_session_order,priority:1"`
	OrderIndex         int            `gorm:"not null;uniqueIndex:ux_session_order,priority:2"`
	PreviousSessionId  *uuid.UUID     `gorm:"type:uuid;index"`
	AccumulatedContext string         `gorm:"type:text"`
	FinalQuestion      string         `gorm:"type:text"`
	Status             string         `gorm:"type:varchar(50);not null;default:'active'"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "sessions"
}
