package service

import (
	"context"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/pkg/apperrors"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateChatRequest) (*dto.ChatResponse, error)
	List(ctx context.Context, userId, projectId uuid.UUID) ([]*dto.ChatResponse, error)

	// CreateSession appends the next session to the chat's chain. The new
	// session inherits the predecessor's accumulated context unless the
	// request carries its own.
	CreateSession(ctx context.Context, userId, chatId uuid.UUID, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)

	Sessions(ctx context.Context, userId, chatId uuid.UUID) ([]*dto.SessionResponse, error)
	Delete(ctx context.Context, userId, chatId uuid.UUID) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *chatService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: request.ProjectId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load project", err)
	}
	if project == nil {
		return nil, apperrors.NotFound("project not found")
	}

	chat := &entity.Chat{
		Id:        uuid.New(),
		ProjectId: request.ProjectId,
		UserId:    userId,
		Title:     request.Title,
	}
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to create chat", err)
	}

	return toChatResponse(chat), nil
}

func (s *chatService) List(ctx context.Context, userId, projectId uuid.UUID) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to list chats", err)
	}

	responses := make([]*dto.ChatResponse, len(chats))
	for i, c := range chats {
		responses[i] = toChatResponse(c)
	}
	return responses, nil
}

func (s *chatService) CreateSession(ctx context.Context, userId, chatId uuid.UUID, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load chat", err)
	}
	if chat == nil {
		return nil, apperrors.NotFound("chat not found")
	}

	latest, err := uow.SessionRepository().FindLatestByChat(ctx, chatId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load latest session", err)
	}

	session := &entity.Session{
		Id:                 uuid.New(),
		ChatId:             chatId,
		OrderIndex:         0,
		AccumulatedContext: request.AccumulatedContext,
		FinalQuestion:      request.FinalQuestion,
		Status:             entity.SessionStatusActive,
	}
	if latest != nil {
		session.OrderIndex = latest.OrderIndex + 1
		session.PreviousSessionId = &latest.Id
		if session.AccumulatedContext == "" {
			session.AccumulatedContext = latest.AccumulatedContext
		}
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to create session", err)
	}

	return &dto.SessionResponse{
		Id:                 session.Id,
		ChatId:             session.ChatId,
		OrderIndex:         session.OrderIndex,
		PreviousSessionId:  session.PreviousSessionId,
		AccumulatedContext: session.AccumulatedContext,
		FinalQuestion:      session.FinalQuestion,
		Status:             session.Status,
		CreatedAt:          session.CreatedAt,
	}, nil
}

// Sessions returns the ordered turn chain of a chat.
func (s *chatService) Sessions(ctx context.Context, userId, chatId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load chat", err)
	}
	if chat == nil {
		return nil, apperrors.NotFound("chat not found")
	}

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.OrderBy{Field: "order_index", Desc: false},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load sessions", err)
	}

	responses := make([]*dto.SessionResponse, len(sessions))
	for i, sess := range sessions {
		responses[i] = &dto.SessionResponse{
			Id:                 sess.Id,
			ChatId:             sess.ChatId,
			OrderIndex:         sess.OrderIndex,
			PreviousSessionId:  sess.PreviousSessionId,
			AccumulatedContext: sess.AccumulatedContext,
			FinalQuestion:      sess.FinalQuestion,
			Status:             sess.Status,
			CreatedAt:          sess.CreatedAt,
		}
	}
	return responses, nil
}

func (s *chatService) Delete(ctx context.Context, userId, chatId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to load chat", err)
	}
	if chat == nil {
		return apperrors.NotFound("chat not found")
	}

	if err := uow.ChatRepository().Delete(ctx, chatId); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete chat", err)
	}
	return nil
}

func toChatResponse(c *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
