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
	"gorm.io/gorm"
)

func applySpecs(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// InteractionEvent

type InteractionEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewInteractionEventRepository(db *gorm.DB) contract.InteractionEventRepository {
	return &InteractionEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *InteractionEventRepositoryImpl) Create(ctx context.Context, event *entity.InteractionEvent) error {
	m := r.mapper.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.EventToEntity(m)
	return nil
}

func (r *InteractionEventRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InteractionEvent, error) {
	var m model.InteractionEvent
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.EventToEntity(&m), nil
}

func (r *InteractionEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionEvent, error) {
	var models []*model.InteractionEvent
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.InteractionEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EventToEntity(m)
	}
	return entities, nil
}

func (r *InteractionEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecs(r.db.WithContext(ctx).Model(&model.InteractionEvent{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

// IAPrompt

type IAPromptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewIAPromptRepository(db *gorm.DB) contract.IAPromptRepository {
	return &IAPromptRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *IAPromptRepositoryImpl) Create(ctx context.Context, prompt *entity.IAPrompt) error {
	m := r.mapper.PromptToModel(prompt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*prompt = *r.mapper.PromptToEntity(m)
	return nil
}

func (r *IAPromptRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.IAPrompt{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *IAPromptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IAPrompt, error) {
	var m model.IAPrompt
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PromptToEntity(&m), nil
}

func (r *IAPromptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IAPrompt, error) {
	var models []*model.IAPrompt
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.IAPrompt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PromptToEntity(m)
	}
	return entities, nil
}

// IAResponse

type IAResponseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewIAResponseRepository(db *gorm.DB) contract.IAResponseRepository {
	return &IAResponseRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *IAResponseRepositoryImpl) Create(ctx context.Context, response *entity.IAResponse) error {
	m := r.mapper.ResponseToModel(response)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*response = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *IAResponseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IAResponse, error) {
	var models []*model.IAResponse
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.IAResponse, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ResponseToEntity(m)
	}
	return entities, nil
}

// ModeratedSynthesis

type ModeratedSynthesisRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InteractionMapper
}

func NewModeratedSynthesisRepository(db *gorm.DB) contract.ModeratedSynthesisRepository {
	return &ModeratedSynthesisRepositoryImpl{
		db:     db,
		mapper: mapper.NewInteractionMapper(),
	}
}

func (r *ModeratedSynthesisRepositoryImpl) Create(ctx context.Context, synthesis *entity.ModeratedSynthesis) error {
	m := r.mapper.SynthesisToModel(synthesis)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*synthesis = *r.mapper.SynthesisToEntity(m)
	return nil
}

func (r *ModeratedSynthesisRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModeratedSynthesis, error) {
	var m model.ModeratedSynthesis
	query := applySpecs(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SynthesisToEntity(&m), nil
}
