package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ModeratedSynthesis struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InteractionEventId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	SynthesisText      string         `gorm:"type:text;not null"`
	Quality            string         `gorm:"type:synthesis_quality;not null;default:'medium'"`
	KeyThemes          datatypes.JSON `gorm:"type:jsonb"`
	ConsensusAreas     datatypes.JSON `gorm:"type:jsonb"`
	Contradictions     datatypes.JSON `gorm:"type:jsonb"`
	SourceReferences   datatypes.JSON `gorm:"type:jsonb"`
	FallbackUsed       bool           `gorm:"default:false"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (ModeratedSynthesis) TableName() string {
	return "moderated_syntheses"
}
