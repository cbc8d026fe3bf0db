package model

import (
	"time"

	"github.com/google/uuid"
)

// Response is one generated answer tying a question to a transcript.
type Response struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TranscriptId uuid.UUID `gorm:"type:uuid;not null;index"`
	QuestionId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Response     string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Response) TableName() string {
	return "responses"
}
