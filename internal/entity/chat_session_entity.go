package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatType string

const (
	ChatTypeProject    ChatType = "project"
	ChatTypeTranscript ChatType = "transcript"
)

type ChatTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSession struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	ChatName     string
	ProjectId    uuid.UUID
	TranscriptId *uuid.UUID
	ChatType     ChatType

	Conversation    []ChatTurn
	NumInteractions int
	DeleteTime      *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}
