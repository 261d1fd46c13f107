package service

import (
	"context"
	"encoding/json"
	"fmt"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/pkg/apperrors"
	"orquix-backend/internal/pkg/logger"
	"orquix-backend/internal/repository/specification"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/utils"

	"github.com/google/uuid"
)

type IIngestionService interface {
	IngestText(ctx context.Context, userId, projectId uuid.UUID, request *dto.IngestTextRequest) (*dto.IngestTextResponse, error)
}

type ingestionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	chunkSize        int
	chunkOverlap     int
	logger           logger.ILogger
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	chunkSize int,
	chunkOverlap int,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		logger:           log,
	}
}

// IngestText splits source text and queues one embedding job per chunk. The
// split is synchronous; embedding happens in the background consumer.
func (s *ingestionService) IngestText(ctx context.Context, userId, projectId uuid.UUID, request *dto.IngestTextRequest) (*dto.IngestTextResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
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

	chunks := utils.SplitText(request.Text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		s.logger.Info("ingestion_service", "empty source text, nothing to ingest", map[string]interface{}{
			"project_id": projectId.String(),
			"source":     request.SourceIdentifier,
		})
		return &dto.IngestTextResponse{ChunksQueued: 0}, nil
	}

	for _, chunk := range chunks {
		payload, err := json.Marshal(dto.PublishEmbedChunkMessage{
			ProjectId:        projectId,
			UserId:           userId,
			SourceType:       request.SourceType,
			SourceIdentifier: request.SourceIdentifier,
			ChunkIndex:       chunk.Ordinal,
			Text:             chunk.Text,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chunk payload: %w", err)
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "failed to queue chunk for embedding", err)
		}
	}

	s.logger.Info("ingestion_service", "source text queued for embedding", map[string]interface{}{
		"project_id": projectId.String(),
		"source":     request.SourceIdentifier,
		"chunks":     len(chunks),
	})

	return &dto.IngestTextResponse{ChunksQueued: len(chunks)}, nil
}
