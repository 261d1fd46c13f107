package dto

import "github.com/google/uuid"

// PublishEmbedChunkMessage is the payload queued for the embedding worker,
// one message per chunk.
type PublishEmbedChunkMessage struct {
	ProjectId        uuid.UUID `json:"project_id"`
	UserId           uuid.UUID `json:"user_id"`
	SourceType       string    `json:"source_type"`
	SourceIdentifier string    `json:"source_identifier"`
	ChunkIndex       int       `json:"chunk_index"`
	Text             string    `json:"text"`
}
