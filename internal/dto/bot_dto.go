package dto

import (
	"time"

	"github.com/google/uuid"
)

type InviteBotRequest struct {
	ProjectId   uuid.UUID `json:"project_id" validate:"required"`
	MeetingURL  string    `json:"meeting_url" validate:"required,url"`
	MeetingName string    `json:"meeting_name" validate:"required,min=1,max=255"`
}

type InviteBotResponse struct {
	SessionId    uuid.UUID `json:"session_id"`
	TranscriptId uuid.UUID `json:"transcript_id"`
	BotId        string    `json:"bot_id"`
	WebhookURL   string    `json:"webhook_url"`
}

// BotWebhookRequest is the vendor's inbound event payload. The poller also
// POSTs the webhook with an empty body, which decodes to the zero value.
type BotWebhookRequest struct {
	Event string          `json:"event"`
	Data  *BotWebhookData `json:"data,omitempty"`
}

type BotWebhookData struct {
	BotId  string            `json:"bot_id"`
	Status *BotWebhookStatus `json:"status,omitempty"`
	MP4URL string            `json:"mp4,omitempty"`
}

type BotWebhookStatus struct {
	Code      string     `json:"code"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type BotWebhookResponse struct {
	Event string `json:"event"`
}

type EventLogResponse struct {
	Type      string     `json:"type"`
	Code      string     `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	StatusAt  *time.Time `json:"status_at,omitempty"`
}

type BotStatusResponse struct {
	SessionId       uuid.UUID          `json:"session_id"`
	BotId           *string            `json:"bot_id,omitempty"`
	StatusCode      string             `json:"status_code"`
	StatusCreatedAt *time.Time         `json:"status_created_at,omitempty"`
	IsPolling       bool               `json:"is_polling"`
	ErrorCount      int                `json:"error_count"`
	LastPollTime    *time.Time         `json:"last_poll_time,omitempty"`
	RecordingURL    *string            `json:"recording_url,omitempty"`
	EventLogs       []EventLogResponse `json:"event_logs"`
}
