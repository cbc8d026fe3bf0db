package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatDataProject is one project with its usable transcripts, for the chat
// target picker.
type ChatDataProject struct {
	Id          uuid.UUID           `json:"id"`
	ProjectName string              `json:"project_name"`
	Transcripts []TranscriptSummary `json:"transcripts"`
}

type ChatDataResponse struct {
	Projects []ChatDataProject `json:"projects"`
}

type StartChatRequest struct {
	ProjectId    uuid.UUID  `json:"project_id" validate:"required"`
	TranscriptId *uuid.UUID `json:"transcript_id"`
	ChatType     string     `json:"chat_type" validate:"required,oneof=project transcript"`
}

type StartChatResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	ChatName  string    `json:"chat_name"`
}

type ChatSessionResponse struct {
	Id              uuid.UUID  `json:"id"`
	ChatName        string     `json:"chat_name"`
	ChatType        string     `json:"chat_type"`
	ProjectId       uuid.UUID  `json:"project_id"`
	TranscriptId    *uuid.UUID `json:"transcript_id,omitempty"`
	NumInteractions int        `json:"num_interactions"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SendMessageRequest struct {
	SessionId uuid.UUID
	Message   string `json:"message" validate:"required,min=1"`
}

type ChatTurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID          `json:"session_id"`
	Answer    string             `json:"answer"`
	Turns     []ChatTurnResponse `json:"turns,omitempty"`
}
