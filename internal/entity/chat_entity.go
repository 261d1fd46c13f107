package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

type Chat struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Session struct {
	Id                 uuid.UUID
	ChatId             uuid.UUID
	OrderIndex         int
	PreviousSessionId  *uuid.UUID
	AccumulatedContext string
	FinalQuestion      string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}
