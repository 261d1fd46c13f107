package mapper

import (
	"encoding/json"
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/model"
)

type ContextSessionMapper struct{}

func NewContextSessionMapper() *ContextSessionMapper {
	return &ContextSessionMapper{}
}

func (m *ContextSessionMapper) ToEntity(s *model.ContextSession) *entity.ContextSession {
	if s == nil {
		return nil
	}

	var history []entity.ConversationTurn
	if len(s.ConversationHistory) > 0 {
		_ = json.Unmarshal(s.ConversationHistory, &history)
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContextSession{
		Id:                  s.Id,
		ProjectId:           s.ProjectId,
		UserId:              s.UserId,
		ConversationHistory: history,
		AccumulatedContext:  s.AccumulatedContext,
		IsActive:            s.IsActive,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ContextSessionMapper) ToModel(s *entity.ContextSession) *model.ContextSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ContextSession{
		Id:                  s.Id,
		ProjectId:           s.ProjectId,
		UserId:              s.UserId,
		ConversationHistory: marshalJSON(s.ConversationHistory),
		AccumulatedContext:  s.AccumulatedContext,
		IsActive:            s.IsActive,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}
