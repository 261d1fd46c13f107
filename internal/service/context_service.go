package service

import (
	"context"
	"time"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/pkg/apperrors"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/contextbuilder"

	"github.com/google/uuid"
)

const saveRetries = 3

type IContextService interface {
	// HandleMessage processes one sidebar turn: classify, extract when the
	// message carries information, and persist the grown context.
	HandleMessage(ctx context.Context, userId, projectId uuid.UUID, request *dto.ContextMessageRequest) (*dto.ContextMessageResponse, error)

	// Finalize closes the active session and records the packaged query as
	// an interaction event ready for orchestration.
	Finalize(ctx context.Context, userId, projectId uuid.UUID, request *dto.FinalizeContextRequest) (*dto.FinalizeContextResponse, error)

	GetActiveSession(ctx context.Context, userId, projectId uuid.UUID) (*dto.ContextSessionResponse, error)
}

type contextService struct {
	uowFactory unitofwork.RepositoryFactory
	classifier *contextbuilder.Classifier
	extractor  *contextbuilder.Extractor
	logger     logger.ILogger
}

func NewContextService(
	uowFactory unitofwork.RepositoryFactory,
	classifier *contextbuilder.Classifier,
	extractor *contextbuilder.Extractor,
	log logger.ILogger,
) IContextService {
	return &contextService{
		uowFactory: uowFactory,
		classifier: classifier,
		extractor:  extractor,
		logger:     log,
	}
}

func (s *contextService) HandleMessage(ctx context.Context, userId, projectId uuid.UUID, request *dto.ContextMessageRequest) (*dto.ContextMessageResponse, error) {
	classification := s.classifier.Classify(ctx, request.Content)

	// A clarification turn only asks the user to rephrase. Neither the
	// accumulated context nor the conversation history changes.
	if classification.Type == contextbuilder.MessageTypeClarification {
		return s.clarificationResponse(ctx, userId, projectId, request, classification)
	}

	var facts contextbuilder.Facts
	if classification.Type == contextbuilder.MessageTypeInformation {
		facts = s.extractor.Extract(ctx, request.Content)
	}

	for attempt := 1; attempt <= saveRetries; attempt++ {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		repo := uow.ContextSessionRepository()

		session, err := s.loadOrCreateSession(ctx, uow, userId, projectId, request.SessionId)
		if err != nil {
			return nil, err
		}

		doc := contextbuilder.Parse(session.AccumulatedContext)
		if facts != nil {
			doc.Merge(facts)
		}

		now := time.Now()
		session.ConversationHistory = append(session.ConversationHistory,
			entity.ConversationTurn{Role: "user", Content: request.Content, MessageType: string(classification.Type), At: now},
		)
		if classification.Reply != "" {
			session.ConversationHistory = append(session.ConversationHistory,
				entity.ConversationTurn{Role: "assistant", Content: classification.Reply, At: now},
			)
		}
		session.AccumulatedContext = doc.Render()

		var expected time.Time
		if session.UpdatedAt != nil {
			expected = *session.UpdatedAt
		}
		ok, err := repo.UpdateIfUnchanged(ctx, session, expected)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to save context session", err)
		}
		if !ok {
			// Concurrent save won, reload and reapply.
			s.logger.Warn("context_service", "optimistic save lost, retrying", map[string]interface{}{
				"session_id": session.Id.String(),
				"attempt":    attempt,
			})
			continue
		}

		response := &dto.ContextMessageResponse{
			SessionId:            session.Id,
			MessageType:          string(classification.Type),
			Reply:                classification.Reply,
			ContextPreview:       session.AccumulatedContext,
			ContextElementsCount: doc.Facts.Total(),
			Ready:                doc.Ready(),
		}
		if classification.Type == contextbuilder.MessageTypeQuestion {
			response.Suggestions = doc.Suggestions()
			if doc.Ready() {
				response.MessageType = string(contextbuilder.MessageTypeReady)
			}
		}
		return response, nil
	}

	return nil, apperrors.New(apperrors.KindPersistence, "context session is being modified concurrently, try again")
}

// clarificationResponse answers a clarification turn from a read-only view
// of the session. Nothing is created or updated.
func (s *contextService) clarificationResponse(ctx context.Context, userId, projectId uuid.UUID, request *dto.ContextMessageRequest, classification *contextbuilder.Classification) (*dto.ContextMessageResponse, error) {
	response := &dto.ContextMessageResponse{
		MessageType: string(classification.Type),
		Reply:       classification.Reply,
	}

	specs := []specification.Specification{
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if request.SessionId != nil {
		specs = []specification.Specification{
			specification.ByID{ID: *request.SessionId},
			specification.ByUserID{UserID: userId},
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ContextSessionRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load context session", err)
	}
	if session != nil {
		doc := contextbuilder.Parse(session.AccumulatedContext)
		response.SessionId = session.Id
		response.ContextPreview = session.AccumulatedContext
		response.ContextElementsCount = doc.Facts.Total()
		response.Ready = doc.Ready()
	}
	return response, nil
}

func (s *contextService) loadOrCreateSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, projectId uuid.UUID, sessionId *uuid.UUID) (*entity.ContextSession, error) {
	repo := uow.ContextSessionRepository()

	if sessionId != nil {
		session, err := repo.FindOne(ctx,
			specification.ByID{ID: *sessionId},
			specification.ByUserID{UserID: userId},
		)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load context session", err)
		}
		if session == nil {
			return nil, apperrors.NotFound("context session not found")
		}
		if !session.IsActive {
			return nil, apperrors.Validation("context session is already finalized")
		}
		return session, nil
	}

	session, err := repo.FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load context session", err)
	}
	if session != nil {
		return session, nil
	}

	session = &entity.ContextSession{
		Id:        uuid.New(),
		ProjectId: projectId,
		UserId:    userId,
		IsActive:  true,
	}
	if err := repo.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to create context session", err)
	}
	return session, nil
}

func (s *contextService) Finalize(ctx context.Context, userId, projectId uuid.UUID, request *dto.FinalizeContextRequest) (*dto.FinalizeContextResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ContextSessionRepository()

	session, err := repo.FindOne(ctx,
		specification.ByID{ID: request.SessionId},
		specification.ByUserID{UserID: userId},
		specification.ByProjectID{ProjectID: projectId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load context session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("context session not found")
	}
	if !session.IsActive {
		return nil, apperrors.Validation("context session is already finalized")
	}

	packaged := contextbuilder.PackageForOrchestration(request.FinalQuestion, session.AccumulatedContext)

	event := &entity.InteractionEvent{
		Id:        uuid.New(),
		ProjectId: projectId,
		UserId:    userId,
		EventType: entity.EventTypeContextFinal,
		Content:   packaged,
		EventData: map[string]interface{}{
			"context_session_id": session.Id.String(),
			"final_question":     request.FinalQuestion,
		},
	}
	if err := uow.InteractionEventRepository().Create(ctx, event); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to record finalized context", err)
	}
	if err := repo.Deactivate(ctx, session.Id); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to close context session", err)
	}

	s.logger.Info("context_service", "context session finalized", map[string]interface{}{
		"session_id":           session.Id.String(),
		"interaction_event_id": event.Id.String(),
	})

	return &dto.FinalizeContextResponse{
		InteractionEventId: event.Id,
		PackagedQuery:      packaged,
	}, nil
}

func (s *contextService) GetActiveSession(ctx context.Context, userId, projectId uuid.UUID) (*dto.ContextSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ContextSessionRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.ActiveOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load context session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("no active context session")
	}

	history := make([]dto.ConversationTurnDTO, len(session.ConversationHistory))
	for i, turn := range session.ConversationHistory {
		history[i] = dto.ConversationTurnDTO{
			Role:        turn.Role,
			Content:     turn.Content,
			MessageType: turn.MessageType,
			At:          turn.At,
		}
	}

	return &dto.ContextSessionResponse{
		Id:                 session.Id,
		ProjectId:          session.ProjectId,
		AccumulatedContext: session.AccumulatedContext,
		History:            history,
		IsActive:           session.IsActive,
		CreatedAt:          session.CreatedAt,
	}, nil
}
