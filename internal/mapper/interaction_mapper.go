package mapper

import (
	"encoding/json"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/model"

	"gorm.io/datatypes"
)

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) EventToEntity(e *model.InteractionEvent) *entity.InteractionEvent {
	if e == nil {
		return nil
	}

	var eventData map[string]interface{}
	if len(e.EventData) > 0 {
		_ = json.Unmarshal(e.EventData, &eventData)
	}

	var aiResponses []*entity.IAResponse
	if len(e.AiResponsesJson) > 0 {
		_ = json.Unmarshal(e.AiResponsesJson, &aiResponses)
	}
	var synthesis *entity.ModeratedSynthesis
	if len(e.ModeratorSynthesisJson) > 0 {
		_ = json.Unmarshal(e.ModeratorSynthesisJson, &synthesis)
	}

	return &entity.InteractionEvent{
		Id:                 e.Id,
		ProjectId:          e.ProjectId,
		UserId:             e.UserId,
		SessionId:          e.SessionId,
		EventType:          e.EventType,
		Content:            e.PromptText(),
		EventData:          eventData,
		AiResponses:        aiResponses,
		ModeratorSynthesis: synthesis,
		ContextUsed:        e.ContextUsed,
		ContextPreview:     e.ContextPreview,
		ProcessingTimeMs:   e.ProcessingTimeMs,
		CreatedAt:          e.CreatedAt,
	}
}

func (m *InteractionMapper) EventToModel(e *entity.InteractionEvent) *model.InteractionEvent {
	if e == nil {
		return nil
	}

	var eventData datatypes.JSON
	if e.EventData != nil {
		if raw, err := json.Marshal(e.EventData); err == nil {
			eventData = raw
		}
	}

	out := &model.InteractionEvent{
		Id:               e.Id,
		ProjectId:        e.ProjectId,
		UserId:           e.UserId,
		SessionId:        e.SessionId,
		EventType:        e.EventType,
		Content:          e.Content,
		EventData:        eventData,
		ContextUsed:      e.ContextUsed,
		ContextPreview:   e.ContextPreview,
		ProcessingTimeMs: e.ProcessingTimeMs,
		CreatedAt:        e.CreatedAt,
	}
	if len(e.AiResponses) > 0 {
		out.AiResponsesJson = marshalJSON(e.AiResponses)
	}
	if e.ModeratorSynthesis != nil {
		out.ModeratorSynthesisJson = marshalJSON(e.ModeratorSynthesis)
	}
	return out
}

func (m *InteractionMapper) PromptToEntity(p *model.IAPrompt) *entity.IAPrompt {
	if p == nil {
		return nil
	}

	return &entity.IAPrompt{
		Id:                 p.Id,
		InteractionEventId: p.InteractionEventId,
		ProjectId:          p.ProjectId,
		ContextSessionId:   p.ContextSessionId,
		OriginalQuery:      p.OriginalQuery,
		PromptText:         p.PromptText,
		IsEdited:           p.IsEdited,
		EditedPrompt:       p.EditedPrompt,
		Status:             p.Status,
		EstimatedTokens:    p.EstimatedTokens,
		CreatedAt:          p.CreatedAt,
	}
}

func (m *InteractionMapper) PromptToModel(p *entity.IAPrompt) *model.IAPrompt {
	if p == nil {
		return nil
	}

	return &model.IAPrompt{
		Id:                 p.Id,
		InteractionEventId: p.InteractionEventId,
		ProjectId:          p.ProjectId,
		ContextSessionId:   p.ContextSessionId,
		OriginalQuery:      p.OriginalQuery,
		PromptText:         p.PromptText,
		IsEdited:           p.IsEdited,
		EditedPrompt:       p.EditedPrompt,
		Status:             p.Status,
		EstimatedTokens:    p.EstimatedTokens,
		CreatedAt:          p.CreatedAt,
	}
}

func (m *InteractionMapper) ResponseToEntity(r *model.IAResponse) *entity.IAResponse {
	if r == nil {
		return nil
	}

	return &entity.IAResponse{
		Id:                 r.Id,
		InteractionEventId: r.InteractionEventId,
		IaPromptId:         r.IaPromptId,
		IaProviderName:     r.IaProviderName,
		ResponseText:       r.ResponseText,
		ErrorMessage:       r.ErrorMessage,
		LatencyMs:          r.LatencyMs,
		ReceivedAt:         r.ReceivedAt,
	}
}

func (m *InteractionMapper) ResponseToModel(r *entity.IAResponse) *model.IAResponse {
	if r == nil {
		return nil
	}

	return &model.IAResponse{
		Id:                 r.Id,
		InteractionEventId: r.InteractionEventId,
		IaPromptId:         r.IaPromptId,
		IaProviderName:     r.IaProviderName,
		ResponseText:       r.ResponseText,
		ErrorMessage:       r.ErrorMessage,
		LatencyMs:          r.LatencyMs,
		ReceivedAt:         r.ReceivedAt,
	}
}

func (m *InteractionMapper) SynthesisToEntity(s *model.ModeratedSynthesis) *entity.ModeratedSynthesis {
	if s == nil {
		return nil
	}

	var keyThemes, consensus, contradictions []string
	var refs map[string][]string
	_ = json.Unmarshal(s.KeyThemes, &keyThemes)
	_ = json.Unmarshal(s.ConsensusAreas, &consensus)
	_ = json.Unmarshal(s.Contradictions, &contradictions)
	_ = json.Unmarshal(s.SourceReferences, &refs)

	return &entity.ModeratedSynthesis{
		Id:                 s.Id,
		InteractionEventId: s.InteractionEventId,
		SynthesisText:      s.SynthesisText,
		Quality:            s.Quality,
		KeyThemes:          keyThemes,
		ConsensusAreas:     consensus,
		Contradictions:     contradictions,
		SourceReferences:   refs,
		FallbackUsed:       s.FallbackUsed,
		CreatedAt:          s.CreatedAt,
	}
}

func (m *InteractionMapper) SynthesisToModel(s *entity.ModeratedSynthesis) *model.ModeratedSynthesis {
	if s == nil {
		return nil
	}

	return &model.ModeratedSynthesis{
		Id:                 s.Id,
		InteractionEventId: s.InteractionEventId,
		SynthesisText:      s.SynthesisText,
		Quality:            s.Quality,
		KeyThemes:          marshalJSON(s.KeyThemes),
		ConsensusAreas:     marshalJSON(s.ConsensusAreas),
		Contradictions:     marshalJSON(s.Contradictions),
		SourceReferences:   marshalJSON(s.SourceReferences),
		FallbackUsed:       s.FallbackUsed,
		CreatedAt:          s.CreatedAt,
	}
}

func marshalJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
