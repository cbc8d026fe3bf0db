package entity

import (
	"time"

	"github.com/google/uuid"
)

// BotStatusCode is the vendor-reported lifecycle status of a meeting bot.
type BotStatusCode string

const (
	BotStatusJoiningCall        BotStatusCode = "joining_call"
	BotStatusInWaitingRoom      BotStatusCode = "in_waiting_room"
	BotStatusInCallNotRecording BotStatusCode = "in_call_not_recording"
	BotStatusInCallRecording    BotStatusCode = "in_call_recording"
	BotStatusCallEnded          BotStatusCode = "call_ended"
	BotStatusError              BotStatusCode = "error"
)

// Polling log entry types appended by the poller.
const (
	PollLogAttempt  = "poll_attempt"
	PollLogError    = "poll_error"
	PollLogRetry    = "poll_retry"
	PollLogComplete = "poll_complete"
)

// Event log entry types appended by the webhook handler and the poller.
const (
	EventLogStatusChange = "status_change"
	EventLogError        = "error"
)

type StatusSnapshot struct {
	Code      string     `json:"code"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type PollingLogEntry struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type EventLogEntry struct {
	Type      string          `json:"type"`
	Status    *StatusSnapshot `json:"status,omitempty"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

type BotSession struct {
	Id          uuid.UUID
	BotId       *string
	MeetingURL  string
	MeetingName string
	WebhookURL  string

	StatusCode      BotStatusCode
	StatusCreatedAt *time.Time

	IsPolling    bool
	ErrorCount   int
	LastPollTime *time.Time

	PollingLogs []PollingLogEntry
	EventLogs   []EventLogEntry

	RecordingURL     *string
	TranscriptTextId *uuid.UUID

	CreatedAt time.Time
	UpdatedAt *time.Time
}
