package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByProjectID scopes a query to one project.
type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

// ByUserID scopes a query to one user for data isolation.
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// ByChatID scopes sessions to one chat.
type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ByInteractionEventID scopes prompts, responses and syntheses to one
// interaction.
type ByInteractionEventID struct {
	InteractionEventID uuid.UUID
}

func (s ByInteractionEventID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("interaction_event_id = ?", s.InteractionEventID)
}

// ByEventType filters interaction events by type.
type ByEventType struct {
	EventType string
}

func (s ByEventType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("event_type = ?", s.EventType)
}

// ActiveOnly keeps rows whose is_active flag is set.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// NotArchived filters out archived projects.
type NotArchived struct{}

func (s NotArchived) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("archived_at IS NULL")
}

// BySourceType filters context chunks by their ingestion source.
type BySourceType struct {
	SourceType string
}

func (s BySourceType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_type = ?", s.SourceType)
}
