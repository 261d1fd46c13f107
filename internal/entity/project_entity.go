package entity

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	Id                     uuid.UUID
	UserId                 uuid.UUID
	Name                   string
	Description            string
	ModeratorPersonality   string
	ModeratorTemperature   float64
	ModeratorLengthPenalty float64
	ArchivedAt             *time.Time
	CreatedAt              time.Time
	UpdatedAt              *time.Time
	DeletedAt              *time.Time
	IsDeleted              bool
}

// IsArchived reports whether the project rejects new orchestration cycles.
func (p *Project) IsArchived() bool {
	return p.ArchivedAt != nil
}
