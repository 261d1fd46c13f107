package contract

import (
	"context"
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type ContextSessionRepository interface {
	Create(ctx context.Context, session *entity.ContextSession) error

	// UpdateIfUnchanged persists the session only when the stored row still
	// carries expectedUpdatedAt. It returns false without writing when a
	// concurrent save won.
	UpdateIfUnchanged(ctx context.Context, session *entity.ContextSession, expectedUpdatedAt time.Time) (bool, error)

	Deactivate(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContextSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContextSession, error)
}
