package dto

import (
	"time"

	"github.com/google/uuid"
)

type SetQuestionsRequest struct {
	ProjectId uuid.UUID
	Questions []string `json:"questions" validate:"required,dive,max=2000"`
}

type SetQuestionsResponse struct {
	Questions []QuestionSummary `json:"questions"`
}

type GenerateAnswersRequest struct {
	TranscriptId uuid.UUID `json:"transcript_id" validate:"required"`
}

type AnswerResponse struct {
	QuestionId uuid.UUID `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
}

type GenerateAnswersResponse struct {
	TranscriptId uuid.UUID        `json:"transcript_id"`
	Answers      []AnswerResponse `json:"answers"`
	GeneratedAt  time.Time        `json:"generated_at"`
}
