package service

import (
	"context"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/pkg/apperrors"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// RecordOrchestrationInput is everything one completed orchestration cycle
// persists.
type RecordOrchestrationInput struct {
	Event     *entity.InteractionEvent
	Prompt    *entity.IAPrompt
	Responses []*entity.IAResponse
	Synthesis *entity.ModeratedSynthesis
}

type IInteractionRecorder interface {
	// RecordOrchestration writes the event, the executed prompt, every
	// provider response and the synthesis in one transaction. Either the
	// whole cycle is stored or none of it is.
	RecordOrchestration(ctx context.Context, input RecordOrchestrationInput) error

	// RecordClarification stores the short-circuit event when pre-analysis
	// stops the cycle with questions. No prompt or responses exist yet.
	RecordClarification(ctx context.Context, event *entity.InteractionEvent) error
}

type interactionRecorder struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewInteractionRecorder(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IInteractionRecorder {
	return &interactionRecorder{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (r *interactionRecorder) RecordOrchestration(ctx context.Context, input RecordOrchestrationInput) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to open transaction", err)
	}

	if err := r.writeAll(ctx, uow, input); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			r.logger.Error("interaction_recorder", "rollback failed", map[string]interface{}{
				"error": rbErr.Error(),
			})
		}
		return err
	}

	if err := uow.Commit(); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to commit interaction", err)
	}

	r.logger.Info("interaction_recorder", "interaction recorded", map[string]interface{}{
		"interaction_event_id": input.Event.Id.String(),
		"responses":            len(input.Responses),
	})
	return nil
}

func (r *interactionRecorder) writeAll(ctx context.Context, uow unitofwork.UnitOfWork, input RecordOrchestrationInput) error {
	input.Prompt.InteractionEventId = input.Event.Id
	input.Prompt.Status = entity.PromptStatusExecuted
	for _, resp := range input.Responses {
		resp.InteractionEventId = input.Event.Id
		resp.IaPromptId = input.Prompt.Id
	}
	if input.Synthesis != nil {
		input.Synthesis.InteractionEventId = input.Event.Id
	}

	// The event row carries denormalized snapshots of the cycle's outcomes,
	// so linkage ids must be in place before it is written.
	input.Event.AiResponses = input.Responses
	input.Event.ModeratorSynthesis = input.Synthesis

	if err := uow.InteractionEventRepository().Create(ctx, input.Event); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to store interaction event", err)
	}
	if err := uow.IAPromptRepository().Create(ctx, input.Prompt); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to store executed prompt", err)
	}
	for _, resp := range input.Responses {
		if err := uow.IAResponseRepository().Create(ctx, resp); err != nil {
			return apperrors.Wrap(apperrors.KindPersistence, "failed to store provider response", err)
		}
	}
	if input.Synthesis != nil {
		if err := uow.ModeratedSynthesisRepository().Create(ctx, input.Synthesis); err != nil {
			return apperrors.Wrap(apperrors.KindPersistence, "failed to store synthesis", err)
		}
	}
	return nil
}

func (r *interactionRecorder) RecordClarification(ctx context.Context, event *entity.InteractionEvent) error {
	event.EventType = entity.EventTypeClarification
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.InteractionEventRepository().Create(ctx, event); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to store clarification event", err)
	}
	return nil
}
