package contract

import (
	"context"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
