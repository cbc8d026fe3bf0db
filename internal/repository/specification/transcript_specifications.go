package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

type ByProjectIDs struct {
	ProjectIDs []uuid.UUID
}

func (s ByProjectIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id IN ?", s.ProjectIDs)
}

type ByBotSessionID struct {
	BotSessionID uuid.UUID
}

func (s ByBotSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("bot_session_id = ?", s.BotSessionID)
}

type ByTranscriptID struct {
	TranscriptID uuid.UUID
}

func (s ByTranscriptID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transcript_id = ?", s.TranscriptID)
}

type ByUploadStatus struct {
	Status string
}

func (s ByUploadStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("upload_status = ?", s.Status)
}
