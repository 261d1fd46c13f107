package unitofwork

import (
	"context"
	"fmt"

	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

type repositoryFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &repositoryFactory{db: db}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db.WithContext(ctx))
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectRepository() contract.ProjectRepository {
	return implementation.NewProjectRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ContextChunkRepository() contract.ContextChunkRepository {
	return implementation.NewContextChunkRepository(u.getDB())
}

func (u *UnitOfWorkImpl) InteractionEventRepository() contract.InteractionEventRepository {
	return implementation.NewInteractionEventRepository(u.getDB())
}

func (u *UnitOfWorkImpl) IAPromptRepository() contract.IAPromptRepository {
	return implementation.NewIAPromptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) IAResponseRepository() contract.IAResponseRepository {
	return implementation.NewIAResponseRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ModeratedSynthesisRepository() contract.ModeratedSynthesisRepository {
	return implementation.NewModeratedSynthesisRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChatRepository() contract.ChatRepository {
	return implementation.NewChatRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SessionRepository() contract.SessionRepository {
	return implementation.NewSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ContextSessionRepository() contract.ContextSessionRepository {
	return implementation.NewContextSessionRepository(u.getDB())
}
