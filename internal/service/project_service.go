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

	"github.com/google/uuid"
)

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, request *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Update(ctx context.Context, userId uuid.UUID, request *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Show(ctx context.Context, userId, projectId uuid.UUID) (*dto.ProjectResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectResponse, error)
	Archive(ctx context.Context, userId, projectId uuid.UUID) error
	Delete(ctx context.Context, userId, projectId uuid.UUID) error
}

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewProjectService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IProjectService {
	return &projectService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *projectService) Create(ctx context.Context, userId uuid.UUID, request *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	project := &entity.Project{
		Id:                     uuid.New(),
		UserId:                 userId,
		Name:                   request.Name,
		Description:            request.Description,
		ModeratorPersonality:   "Analytical",
		ModeratorTemperature:   0.3,
		ModeratorLengthPenalty: 0.5,
	}
	if request.ModeratorPersonality != "" {
		project.ModeratorPersonality = request.ModeratorPersonality
	}
	if request.ModeratorTemperature != nil {
		project.ModeratorTemperature = *request.ModeratorTemperature
	}
	if request.ModeratorLengthPenalty != nil {
		project.ModeratorLengthPenalty = *request.ModeratorLengthPenalty
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to create project", err)
	}

	s.logger.Info("project_service", "project created", map[string]interface{}{
		"project_id": project.Id.String(),
	})
	return toProjectResponse(project), nil
}

func (s *projectService) Update(ctx context.Context, userId uuid.UUID, request *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := s.loadOwned(ctx, uow, userId, request.Id)
	if err != nil {
		return nil, err
	}

	project.Name = request.Name
	project.Description = request.Description
	if request.ModeratorPersonality != "" {
		project.ModeratorPersonality = request.ModeratorPersonality
	}
	if request.ModeratorTemperature != nil {
		project.ModeratorTemperature = *request.ModeratorTemperature
	}
	if request.ModeratorLengthPenalty != nil {
		project.ModeratorLengthPenalty = *request.ModeratorLengthPenalty
	}

	if err := uow.ProjectRepository().Update(ctx, project); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to update project", err)
	}
	return toProjectResponse(project), nil
}

func (s *projectService) Show(ctx context.Context, userId, projectId uuid.UUID) (*dto.ProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := s.loadOwned(ctx, uow, userId, projectId)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to list projects", err)
	}

	responses := make([]*dto.ProjectResponse, len(projects))
	for i, p := range projects {
		responses[i] = toProjectResponse(p)
	}
	return responses, nil
}

// Archive freezes a project: history stays readable, new queries are
// rejected.
func (s *projectService) Archive(ctx context.Context, userId, projectId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := s.loadOwned(ctx, uow, userId, projectId)
	if err != nil {
		return err
	}
	if project.IsArchived() {
		return nil
	}

	now := time.Now()
	project.ArchivedAt = &now
	if err := uow.ProjectRepository().Update(ctx, project); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to archive project", err)
	}

	s.logger.Info("project_service", "project archived", map[string]interface{}{
		"project_id": projectId.String(),
	})
	return nil
}

func (s *projectService) Delete(ctx context.Context, userId, projectId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.loadOwned(ctx, uow, userId, projectId); err != nil {
		return err
	}
	if err := uow.ProjectRepository().Delete(ctx, projectId); err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, "failed to delete project", err)
	}
	return nil
}

func (s *projectService) loadOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, projectId uuid.UUID) (*entity.Project, error) {
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, "failed to load project", err)
	}
	if project == nil {
		return nil, apperrors.NotFound("project not found")
	}
	return project, nil
}

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		Id:                     p.Id,
		Name:                   p.Name,
		Description:            p.Description,
		ModeratorPersonality:   p.ModeratorPersonality,
		ModeratorTemperature:   p.ModeratorTemperature,
		ModeratorLengthPenalty: p.ModeratorLengthPenalty,
		ArchivedAt:             p.ArchivedAt,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}
