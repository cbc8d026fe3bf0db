package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BotSession is one tracked meeting-bot recording job. The poller mutates
// rows exclusively through single-row atomic updates (jsonb append, counter
// increment, field set) so concurrent poll/retry attempts cannot lose
// writes.
type BotSession struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BotId       *string   `gorm:"type:varchar(255);index"`
	MeetingURL  string    `gorm:"type:text;not null"`
	MeetingName string    `gorm:"type:varchar(255);not null"`
	WebhookURL  string    `gorm:"type:text;not null;uniqueIndex"`

	StatusCode      string `gorm:"type:varchar(50)"`
	StatusCreatedAt *time.Time

	IsPolling    bool `gorm:"not null;default:false"`
	ErrorCount   int  `gorm:"not null;default:0"`
	LastPollTime *time.Time

	// Append-only log arrays, in tick order within a session.
	PollingLogs datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	EventLogs   datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`

	RecordingURL     *string    `gorm:"type:text"`
	TranscriptTextId *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (BotSession) TableName() string {
	return "bot_sessions"
}
