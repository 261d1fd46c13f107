package mapper

import (
	"testing"

	"orquix-backend/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventToModelStoresOutcomeSnapshots(t *testing.T) {
	m := NewInteractionMapper()

	eventId := uuid.New()
	text := "Diversifica la oferta."
	event := &entity.InteractionEvent{
		Id:        eventId,
		ProjectId: uuid.New(),
		UserId:    uuid.New(),
		EventType: entity.EventTypeUserPrompt,
		Content:   "¿Cómo compenso la caída de ventas?",
		AiResponses: []*entity.IAResponse{
			{Id: uuid.New(), InteractionEventId: eventId, IaProviderName: "openai", ResponseText: &text, LatencyMs: 120},
		},
		ModeratorSynthesis: &entity.ModeratedSynthesis{
			Id:                 uuid.New(),
			InteractionEventId: eventId,
			SynthesisText:      "Ambos proveedores coinciden.",
			Quality:            "high",
		},
	}

	stored := m.EventToModel(event)
	require.NotEmpty(t, stored.AiResponsesJson)
	require.NotEmpty(t, stored.ModeratorSynthesisJson)
	assert.Contains(t, string(stored.AiResponsesJson), "openai")
	assert.Contains(t, string(stored.ModeratorSynthesisJson), "Ambos proveedores coinciden.")

	back := m.EventToEntity(stored)
	require.Len(t, back.AiResponses, 1)
	assert.Equal(t, "openai", back.AiResponses[0].IaProviderName)
	require.NotNil(t, back.AiResponses[0].ResponseText)
	assert.Equal(t, text, *back.AiResponses[0].ResponseText)
	require.NotNil(t, back.ModeratorSynthesis)
	assert.Equal(t, "high", back.ModeratorSynthesis.Quality)
}

func TestEventToModelWithoutSnapshotsLeavesColumnsNull(t *testing.T) {
	m := NewInteractionMapper()

	stored := m.EventToModel(&entity.InteractionEvent{
		Id:        uuid.New(),
		EventType: entity.EventTypeClarification,
		Content:   "ayúdame",
	})
	assert.Nil(t, stored.AiResponsesJson)
	assert.Nil(t, stored.ModeratorSynthesisJson)
}

func TestPromptMappingRoundTrip(t *testing.T) {
	m := NewInteractionMapper()

	sessionId := uuid.New()
	edited := "versión corregida"
	prompt := &entity.IAPrompt{
		Id:               uuid.New(),
		ProjectId:        uuid.New(),
		ContextSessionId: &sessionId,
		OriginalQuery:    "¿Cómo compenso la caída de ventas?",
		PromptText:       "## Consulta\n¿Cómo compenso la caída de ventas?",
		IsEdited:         true,
		EditedPrompt:     &edited,
		Status:           entity.PromptStatusEdited,
		EstimatedTokens:  42,
	}

	back := m.PromptToEntity(m.PromptToModel(prompt))
	require.NotNil(t, back.ContextSessionId)
	assert.Equal(t, sessionId, *back.ContextSessionId)
	assert.Equal(t, prompt.OriginalQuery, back.OriginalQuery)
	assert.True(t, back.IsEdited)
	require.NotNil(t, back.EditedPrompt)
	assert.Equal(t, edited, *back.EditedPrompt)
}
