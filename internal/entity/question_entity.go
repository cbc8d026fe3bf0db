package entity

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Question  string
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type Response struct {
	Id           uuid.UUID
	TranscriptId uuid.UUID
	QuestionId   uuid.UUID
	Response     string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
