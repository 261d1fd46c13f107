package unitofwork

import (
	"context"

	"orquix-backend/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	ContextChunkRepository() contract.ContextChunkRepository

	InteractionEventRepository() contract.InteractionEventRepository
	IAPromptRepository() contract.IAPromptRepository
	IAResponseRepository() contract.IAResponseRepository
	ModeratedSynthesisRepository() contract.ModeratedSynthesisRepository

	ChatRepository() contract.ChatRepository
	SessionRepository() contract.SessionRepository
	ContextSessionRepository() contract.ContextSessionRepository
}

// RepositoryFactory creates independent units of work; each orchestration
// cycle gets its own.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
