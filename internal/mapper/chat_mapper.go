package mapper

import (
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chat{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chat{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		UserId:    c.UserId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Session{
		Id:                 s.Id,
		ChatId:             s.ChatId,
		OrderIndex:         s.OrderIndex,
		PreviousSessionId:  s.PreviousSessionId,
		AccumulatedContext: s.AccumulatedContext,
		FinalQuestion:      s.FinalQuestion,
		Status:             s.Status,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Session{
		Id:                 s.Id,
		ChatId:             s.ChatId,
		OrderIndex:         s.OrderIndex,
		PreviousSessionId:  s.PreviousSessionId,
		AccumulatedContext: s.AccumulatedContext,
		FinalQuestion:      s.FinalQuestion,
		Status:             s.Status,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}
