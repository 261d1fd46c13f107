package implementation

import (
	"context"
	"errors"
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/mapper"
	"orquix-backend/internal/model"
	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContextSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContextSessionMapper
}

func NewContextSessionRepository(db *gorm.DB) contract.ContextSessionRepository {
	return &ContextSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewContextSessionMapper(),
	}
}

func (r *ContextSessionRepositoryImpl) Create(ctx context.Context, session *entity.ContextSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

// UpdateIfUnchanged is the optimistic concurrency guard for the sidebar:
// the row is only written when updated_at still matches what the caller
// read, otherwise a concurrent save won and the caller must reload.
func (r *ContextSessionRepositoryImpl) UpdateIfUnchanged(ctx context.Context, session *entity.ContextSession, expectedUpdatedAt time.Time) (bool, error) {
	m := r.mapper.ToModel(session)

	res := r.db.WithContext(ctx).
		Model(&model.ContextSession{}).
		Where("id = ? AND updated_at = ?", session.Id, expectedUpdatedAt).
		Updates(map[string]interface{}{
			"conversation_history": m.ConversationHistory,
			"accumulated_context":  m.AccumulatedContext,
			"is_active":            m.IsActive,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ContextSessionRepositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ContextSession{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *ContextSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextSession, error) {
	var m model.ContextSession
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContextSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextSession, error) {
	var models []*model.ContextSession
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ContextSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
