package service

import (
	"context"
	"encoding/json"
	"log"

	"orquix-backend/internal/dto"
	"orquix-backend/internal/entity"
	"orquix-backend/internal/repository/unitofwork"
	"orquix-backend/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChunkMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal chunk message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding chunk %d of %s/%s for project %s",
		payload.ChunkIndex, payload.SourceType, payload.SourceIdentifier, payload.ProjectId)

	vector, err := cs.embeddingProvider.Embed(ctx, payload.Text)
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunk %d of %s: %v", payload.ChunkIndex, payload.SourceIdentifier, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	chunk := &entity.ContextChunk{
		ProjectId:        payload.ProjectId,
		UserId:           payload.UserId,
		ContentText:      payload.Text,
		Embedding:        vector,
		SourceType:       payload.SourceType,
		SourceIdentifier: payload.SourceIdentifier,
		ChunkIndex:       payload.ChunkIndex,
	}
	if err := uow.ContextChunkRepository().Upsert(ctx, chunk); err != nil {
		log.Printf("[ERROR] Failed to store chunk %d of %s: %v", payload.ChunkIndex, payload.SourceIdentifier, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
