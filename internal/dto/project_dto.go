package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	ProjectName string `json:"project_name" validate:"required,min=1,max=255"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type RenameProjectRequest struct {
	Id          uuid.UUID
	ProjectName string `json:"project_name" validate:"required,min=1,max=255"`
}

type ProjectSummaryResponse struct {
	Id                 uuid.UUID  `json:"id"`
	ProjectName        string     `json:"project_name"`
	TranscriptCount    int64      `json:"transcript_count"`
	QuestionsCreatedAt *time.Time `json:"questions_created_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

type TranscriptSummary struct {
	Id             uuid.UUID `json:"id"`
	TranscriptName string    `json:"transcript_name"`
	TranscriptDate time.Time `json:"transcript_date"`
	Origin         string    `json:"origin"`
	UploadStatus   string    `json:"upload_status"`
}

type QuestionSummary struct {
	Id       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Position int       `json:"position"`
}

type ShowProjectResponse struct {
	Id                 uuid.UUID           `json:"id"`
	ProjectName        string              `json:"project_name"`
	Transcripts        []TranscriptSummary `json:"transcripts"`
	Questions          []QuestionSummary   `json:"questions"`
	PastQuestions      []string            `json:"past_questions,omitempty"`
	QuestionsCreatedAt *time.Time          `json:"questions_created_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}
