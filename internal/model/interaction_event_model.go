package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InteractionEvent struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SessionId *uuid.UUID `gorm:"type:uuid;index"`
	EventType string     `gorm:"type:varchar(50);not null;default:'user_prompt'"`
	Content   string     `gorm:"type:text"`
	// Legacy column kept for rows written before Content existed. Read via
	// PromptText(), never written.
	UserPromptText         string         `gorm:"type:text;column:user_prompt_text"`
	EventData              datatypes.JSON `gorm:"type:jsonb"`
	AiResponsesJson        datatypes.JSON `gorm:"type:jsonb"`
	ModeratorSynthesisJson datatypes.JSON `gorm:"type:jsonb"`
	ContextUsed            bool           `gorm:"default:false"`
	ContextPreview         string         `gorm:"type:varchar(500)"`
	ProcessingTimeMs       int64          `gorm:"default:0"`
	CreatedAt              time.Time      `gorm:"autoCreateTime"`
	UpdatedAt              time.Time      `gorm:"autoUpdateTime"`
	DeletedAt              gorm.DeletedAt `gorm:"index"`
}

func (InteractionEvent) TableName() string {
	return "interaction_events"
}

// PromptText returns the prompt regardless of which column the row was
// written with.
func (e *InteractionEvent) PromptText() string {
	if e.Content != "" {
		return e.Content
	}
	return e.UserPromptText
}
