package contract

import (
	"context"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/specification"

	"github.com/google/uuid"
)

type InteractionEventRepository interface {
	Create(ctx context.Context, event *entity.InteractionEvent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InteractionEvent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InteractionEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type IAPromptRepository interface {
	Create(ctx context.Context, prompt *entity.IAPrompt) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IAPrompt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IAPrompt, error)
}

type IAResponseRepository interface {
	Create(ctx context.Context, response *entity.IAResponse) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.IAResponse, error)
}

type ModeratedSynthesisRepository interface {
	Create(ctx context.Context, synthesis *entity.ModeratedSynthesis) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ModeratedSynthesis, error)
}
