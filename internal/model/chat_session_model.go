package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatSession struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChatName     string     `gorm:"type:varchar(255);not null"`
	ProjectId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	TranscriptId *uuid.UUID `gorm:"type:uuid"`
	ChatType     string     `gorm:"type:varchar(20);not null"` // project | transcript

	Conversation    datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	NumInteractions int            `gorm:"default:0"`
	DeleteTime      *time.Time

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
