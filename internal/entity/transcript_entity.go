package entity

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptOrigin string
type UploadStatus string

const (
	OriginFileUpload       TranscriptOrigin = "file_upload"
	OriginMeetingRecording TranscriptOrigin = "meeting_recording"

	UploadStatusUploaded         UploadStatus = "UPLOADED"
	UploadStatusScheduledToJoin  UploadStatus = "SCHEDULED_TO_JOIN"
	UploadStatusMeetingStarted   UploadStatus = "MEETING_STARTED"
	UploadStatusMeetingCompleted UploadStatus = "MEETING_COMPLETED"
	UploadStatusUploadCompleted  UploadStatus = "UPLOAD_COMPLETED"
	UploadStatusUploadFailed     UploadStatus = "UPLOAD_FAILED"
	UploadStatusProcessing       UploadStatus = "PROCESSING"
	UploadStatusProcessed        UploadStatus = "PROCESSED"
	UploadStatusProcessingFailed UploadStatus = "PROCESSING_FAILED"
	UploadStatusBotFailed        UploadStatus = "BOT_FAILED"
	UploadStatusReadyToUse       UploadStatus = "READY_TO_USE"
)

type Transcript struct {
	Id             uuid.UUID
	ProjectId      uuid.UUID
	TranscriptName string
	TranscriptDate time.Time
	Origin         TranscriptOrigin
	UploadStatus   UploadStatus
	FileType       string
	S3Key          string
	S3Url          string
	BotSessionId   *uuid.UUID
	TextId         *uuid.UUID

	LastProcessingDate *time.Time

	ActiveAnswers map[string]interface{}
	PastAnswers   []map[string]interface{}

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

type TranscriptText struct {
	Id        uuid.UUID
	Text      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
