package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "BOT_SESSION_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

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

// Event type codes published on the bus.
const (
	TypeUserLogin            = "USER_LOGIN"
	TypeUserRegistered       = "USER_REGISTERED"
	TypeBotSessionCreated    = "BOT_SESSION_CREATED"
	TypeBotSessionCompleted  = "BOT_SESSION_COMPLETED"
	TypeBotSessionFailed     = "BOT_SESSION_FAILED"
	TypeTranscriptProcessed  = "TRANSCRIPT_PROCESSED"
	TypeTranscriptUploadFail = "TRANSCRIPT_UPLOAD_FAILED"
)
