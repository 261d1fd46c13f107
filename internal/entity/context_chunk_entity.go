package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContextChunk struct {
	Id               uuid.UUID
	ProjectId        uuid.UUID
	UserId           uuid.UUID
	ContentText      string
	Embedding        []float32
	SourceType       string
	SourceIdentifier string
	ChunkIndex       int
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      ContextChunk
	Similarity float64
}
