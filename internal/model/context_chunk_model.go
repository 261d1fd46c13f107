package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ContextChunk struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId        uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_chunk_source,priority:1"`
	UserId           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ContentText      string          `gorm:"type:text;not null"`
	ContentEmbedding pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small uses 1536 dimensions
	SourceType       string          `gorm:"type:varchar(50);not null;uniqueIndex:ux_chunk_source,priority:2"`
	SourceIdentifier string          `gorm:"type:varchar(255);not null;uniqueIndex:ux_chunk_source,priority:3"`
	ChunkIndex       int             `gorm:"default:0;uniqueIndex:ux_chunk_source,priority:4"` // 0-based index for ordering
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt  `gorm:"index"`
}

func (ContextChunk) TableName() string {
	return "context_chunks"
}
