package implementation

import (
	"context"
	"errors"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/mapper"
	"orquix-backend/internal/model"
	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContextChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContextChunkMapper
}

func NewContextChunkRepository(db *gorm.DB) contract.ContextChunkRepository {
	return &ContextChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewContextChunkMapper(),
	}
}

func (r *ContextChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert keeps re-ingestion idempotent: the same source chunk overwrites
// its previous row instead of duplicating it.
func (r *ContextChunkRepositoryImpl) Upsert(ctx context.Context, chunk *entity.ContextChunk) error {
	m := r.mapper.ToModel(chunk)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "project_id"},
			{Name: "source_type"},
			{Name: "source_identifier"},
			{Name: "chunk_index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"content_text", "content_embedding", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContextChunkRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ContextChunk{}, id).Error
}

func (r *ContextChunkRepositoryImpl) DeleteBySource(ctx context.Context, projectId uuid.UUID, sourceType, sourceIdentifier string) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND source_type = ? AND source_identifier = ?", projectId, sourceType, sourceIdentifier).
		Delete(&model.ContextChunk{}).Error
}

func (r *ContextChunkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextChunk, error) {
	var m model.ContextChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContextChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextChunk, error) {
	var models []*model.ContextChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContextChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ContextChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContextChunk{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns chunks with similarity scores, filtered by
// threshold and scoped to the (project, user) pair. Cosine distance in
// pgvector is 1 - cosine_similarity, so 1 - (content_embedding <=>
// query_vector) recovers the similarity.
func (r *ContextChunkRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId, userId uuid.UUID, threshold float64) ([]*entity.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ContextChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("context_chunks").
		Select("context_chunks.*, 1 - (content_embedding <=> ?) as similarity", queryVector).
		Where("context_chunks.project_id = ?", projectId).
		Where("context_chunks.user_id = ?", userId).
		Where("context_chunks.deleted_at IS NULL").
		Where("1 - (content_embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredChunk{
			Chunk:      *r.mapper.ToEntity(&res.ContextChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
