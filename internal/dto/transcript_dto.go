package dto

import (
	"time"

	"github.com/google/uuid"
)

// UploadTranscriptRequest carries the multipart form fields; the file part
// is read separately by the controller.
type UploadTranscriptRequest struct {
	ProjectId      uuid.UUID `json:"project_id" form:"project_id" validate:"required"`
	TranscriptName string    `json:"transcript_name" form:"transcript_name" validate:"required,min=1,max=255"`
	TranscriptDate time.Time `json:"transcript_date" form:"transcript_date"`
}

type UploadTranscriptResponse struct {
	Id           uuid.UUID `json:"id"`
	UploadStatus string    `json:"upload_status"`
}

type RenameTranscriptRequest struct {
	Id             uuid.UUID
	TranscriptName string `json:"transcript_name" validate:"required,min=1,max=255"`
}

type ShowTranscriptResponse struct {
	Id                 uuid.UUID              `json:"id"`
	ProjectId          uuid.UUID              `json:"project_id"`
	TranscriptName     string                 `json:"transcript_name"`
	TranscriptDate     time.Time              `json:"transcript_date"`
	Origin             string                 `json:"origin"`
	UploadStatus       string                 `json:"upload_status"`
	FileType           string                 `json:"file_type,omitempty"`
	Text               string                 `json:"text,omitempty"`
	LastProcessingDate *time.Time             `json:"last_processing_date,omitempty"`
	ActiveAnswers      map[string]interface{} `json:"active_answers,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

type MarkProcessedResponse struct {
	Id                 uuid.UUID  `json:"id"`
	LastProcessingDate *time.Time `json:"last_processing_date"`
}
