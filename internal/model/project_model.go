package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectName string    `gorm:"type:varchar(255);not null"`
	UserId      uuid.UUID `gorm:"type:uuid;not null;index"`

	// Question-generation bookkeeping: when questions were last (re)written
	// and how many transcripts existed at that moment.
	QuestionsCreatedAt           *time.Time
	TranscriptCountWhenQuestions int `gorm:"default:0"`

	PastQuestions datatypes.JSONSlice[string] `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Project) TableName() string {
	return "projects"
}
