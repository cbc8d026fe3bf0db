package entity

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	Id          uuid.UUID
	ProjectName string
	UserId      uuid.UUID

	QuestionsCreatedAt           *time.Time
	TranscriptCountWhenQuestions int
	PastQuestions                []string

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
