package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IAPrompt struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InteractionEventId uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProjectId          uuid.UUID      `gorm:"type:uuid;not null;index"`
	ContextSessionId   *uuid.UUID     `gorm:"type:uuid;index"`
	OriginalQuery      string         `gorm:"type:text"`
	PromptText         string         `gorm:"type:text;not null"`
	IsEdited           bool           `gorm:"default:false"`
	EditedPrompt       *string        `gorm:"type:text"`
	Status             string         `gorm:"type:ia_prompt_status;not null;default:'generated'"`
	EstimatedTokens    int            `gorm:"default:0"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (IAPrompt) TableName() string {
	return "ia_prompts"
}
