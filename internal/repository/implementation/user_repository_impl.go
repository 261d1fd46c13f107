package implementation

import (
	"context"
	"errors"
	"time"

	"orquix-backend/internal/entity"
	"orquix-backend/internal/model"
	"orquix-backend/internal/repository/contract"
	"orquix-backend/internal/repository/specification"

	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := &model.User{
		Id:    user.Id,
		Email: user.Email,
		Name:  user.Name,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	user.Id = m.Id
	user.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}

	var m model.User
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var updatedAt *time.Time
	if !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt
		updatedAt = &t
	}
	return &entity.User{
		Id:        m.Id,
		Email:     m.Email,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}
