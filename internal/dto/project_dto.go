package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name                   string   `json:"name" validate:"required,min=1,max=255"`
	Description            string   `json:"description" validate:"max=2000"`
	ModeratorPersonality   string   `json:"moderator_personality" validate:"omitempty,max=100"`
	ModeratorTemperature   *float64 `json:"moderator_temperature" validate:"omitempty,gte=0,lte=2"`
	ModeratorLengthPenalty *float64 `json:"moderator_length_penalty" validate:"omitempty,gte=0,lte=1"`
}

type UpdateProjectRequest struct {
	Id                     uuid.UUID
	Name                   string   `json:"name" validate:"required,min=1,max=255"`
	Description            string   `json:"description" validate:"max=2000"`
	ModeratorPersonality   string   `json:"moderator_personality" validate:"omitempty,max=100"`
	ModeratorTemperature   *float64 `json:"moderator_temperature" validate:"omitempty,gte=0,lte=2"`
	ModeratorLengthPenalty *float64 `json:"moderator_length_penalty" validate:"omitempty,gte=0,lte=1"`
}

type ProjectResponse struct {
	Id                     uuid.UUID  `json:"id"`
	Name                   string     `json:"name"`
	Description            string     `json:"description"`
	ModeratorPersonality   string     `json:"moderator_personality"`
	ModeratorTemperature   float64    `json:"moderator_temperature"`
	ModeratorLengthPenalty float64    `json:"moderator_length_penalty"`
	ArchivedAt             *time.Time `json:"archived_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
}

type IngestTextRequest struct {
	SourceType       string `json:"source_type" validate:"required,oneof=document note manual"`
	SourceIdentifier string `json:"source_identifier" validate:"required,max=255"`
	Text             string `json:"text" validate:"required"`
}

type IngestTextResponse struct {
	ChunksQueued int `json:"chunks_queued"`
}
