package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	Id                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId               uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name                 string         `gorm:"type:varchar(255);not null"`
	Description          string         `gorm:"type:text"`
	ModeratorPersonality string         `gorm:"type:varchar(100);default:'Analytical'"`
	ModeratorTemperature float64        `gorm:"default:0.3"`
	ModeratorLengthPenalty float64      `gorm:"default:0.5"`
	ArchivedAt           *time.Time     `gorm:"index"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (Project) TableName() string {
	return "projects"
}
