package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "interaction.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent carries the common fields of concrete events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// InteractionCompleted is emitted after an orchestration cycle persists its
// results.
func InteractionCompleted(interactionID, projectID, userID string, quality string, processingTimeMs int64) Event {
	return BaseEvent{
		Type: "interaction.completed",
		Data: map[string]interface{}{
			"interaction_event_id": interactionID,
			"project_id":           projectID,
			"user_id":              userID,
			"moderator_quality":    quality,
			"processing_time_ms":   processingTimeMs,
		},
		OccurredAt: time.Now(),
	}
}

// InteractionClarification is emitted when orchestration stops early to ask
// the user clarifying questions.
func InteractionClarification(interactionID, projectID, userID string, questions []string) Event {
	return BaseEvent{
		Type: "interaction.clarification",
		Data: map[string]interface{}{
			"interaction_event_id":    interactionID,
			"project_id":              projectID,
			"user_id":                 userID,
			"clarification_questions": questions,
		},
		OccurredAt: time.Now(),
	}
}
