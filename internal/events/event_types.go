package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventUserVerified      EventType = "user_verified"
	EventTaskCreated       EventType = "task_created"
	EventTaskStatusChanged EventType = "task_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email                string `json:"email"`
	VerificationRequired bool   `json:"verification_required"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	TaskID    string `json:"task_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
