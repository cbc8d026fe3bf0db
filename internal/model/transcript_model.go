package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Transcript struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	TranscriptName string     `gorm:"type:varchar(255);not null"`
	TranscriptDate time.Time  `gorm:"not null"`
	Origin         string     `gorm:"type:varchar(50);not null;default:'file_upload'"`
	UploadStatus   string     `gorm:"type:varchar(50);not null;default:'UPLOADED'"`
	FileType       string     `gorm:"type:varchar(100)"`
	S3Key          string     `gorm:"type:text"`
	S3Url          string     `gorm:"type:text"`
	BotSessionId   *uuid.UUID `gorm:"type:uuid;index"`
	TextId         *uuid.UUID `gorm:"type:uuid"`

	LastProcessingDate *time.Time

	// Active question -> answer map plus the archive of previous answer sets.
	ActiveAnswers datatypes.JSONMap `gorm:"type:jsonb;default:'{}'"`
	PastAnswers   datatypes.JSON    `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Transcript) TableName() string {
	return "transcripts"
}

type TranscriptText struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TranscriptText) TableName() string {
	return "transcript_texts"
}
