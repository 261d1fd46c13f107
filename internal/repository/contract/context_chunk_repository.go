package contract

import (
	"context"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type ContextChunkRepository interface {
	// Upsert writes a chunk, replacing any existing row with the same
	// (project, source_type, source_identifier, chunk_index).
	Upsert(ctx context.Context, chunk *entity.ContextChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySource(ctx context.Context, projectId uuid.UUID, sourceType, sourceIdentifier string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore runs a cosine similarity search scoped to one
	// (project, user) pair, returning chunks at or above the threshold,
	// most similar first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId, userId uuid.UUID, threshold float64) ([]*entity.ScoredChunk, error)
}
