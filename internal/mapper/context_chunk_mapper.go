package mapper

import (
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ContextChunkMapper struct{}

func NewContextChunkMapper() *ContextChunkMapper {
	return &ContextChunkMapper{}
}

func (m *ContextChunkMapper) ToEntity(c *model.ContextChunk) *entity.ContextChunk {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContextChunk{
		Id:               c.Id,
		ProjectId:        c.ProjectId,
		UserId:           c.UserId,
		ContentText:      c.ContentText,
		Embedding:        c.ContentEmbedding.Slice(),
		SourceType:       c.SourceType,
		SourceIdentifier: c.SourceIdentifier,
		ChunkIndex:       c.ChunkIndex,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *ContextChunkMapper) ToModel(c *entity.ContextChunk) *model.ContextChunk {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.ContextChunk{
		Id:               c.Id,
		ProjectId:        c.ProjectId,
		UserId:           c.UserId,
		ContentText:      c.ContentText,
		ContentEmbedding: pgvector.NewVector(c.Embedding),
		SourceType:       c.SourceType,
		SourceIdentifier: c.SourceIdentifier,
		ChunkIndex:       c.ChunkIndex,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}
