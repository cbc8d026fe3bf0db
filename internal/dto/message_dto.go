package dto

import "github.com/google/uuid"

// ProcessRecordingMessage is the internal bus payload that triggers the
// recording fetch/transcribe pipeline after a meeting completes.
type ProcessRecordingMessage struct {
	SessionId    uuid.UUID `json:"session_id"`
	TranscriptId uuid.UUID `json:"transcript_id"`
}
