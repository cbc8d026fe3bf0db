package mapper

import (
	"encoding/json"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TranscriptMapper struct{}

func NewTranscriptMapper() *TranscriptMapper {
	return &TranscriptMapper{}
}

func (m *TranscriptMapper) ToEntity(t *model.Transcript) *entity.Transcript {
	if t == nil {
		return nil
	}

	var deletedAt *time.Time
	if t.DeletedAt.Valid {
		d := t.DeletedAt.Time
		deletedAt = &d
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	var pastAnswers []map[string]interface{}
	if len(t.PastAnswers) > 0 {
		_ = json.Unmarshal(t.PastAnswers, &pastAnswers)
	}

	return &entity.Transcript{
		Id:                 t.Id,
		ProjectId:          t.ProjectId,
		TranscriptName:     t.TranscriptName,
		TranscriptDate:     t.TranscriptDate,
		Origin:             entity.TranscriptOrigin(t.Origin),
		UploadStatus:       entity.UploadStatus(t.UploadStatus),
		FileType:           t.FileType,
		S3Key:              t.S3Key,
		S3Url:              t.S3Url,
		BotSessionId:       t.BotSessionId,
		TextId:             t.TextId,
		LastProcessingDate: t.LastProcessingDate,
		ActiveAnswers:      map[string]interface{}(t.ActiveAnswers),
		PastAnswers:        pastAnswers,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
		IsDeleted:          t.DeletedAt.Valid,
	}
}

func (m *TranscriptMapper) ToModel(t *entity.Transcript) *model.Transcript {
	if t == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if t.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *t.DeletedAt, Valid: true}
	} else if t.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	pastAnswers := datatypes.JSON("[]")
	if t.PastAnswers != nil {
		if raw, err := json.Marshal(t.PastAnswers); err == nil {
			pastAnswers = raw
		}
	}

	return &model.Transcript{
		Id:                 t.Id,
		ProjectId:          t.ProjectId,
		TranscriptName:     t.TranscriptName,
		TranscriptDate:     t.TranscriptDate,
		Origin:             string(t.Origin),
		UploadStatus:       string(t.UploadStatus),
		FileType:           t.FileType,
		S3Key:              t.S3Key,
		S3Url:              t.S3Url,
		BotSessionId:       t.BotSessionId,
		TextId:             t.TextId,
		LastProcessingDate: t.LastProcessingDate,
		ActiveAnswers:      datatypes.JSONMap(t.ActiveAnswers),
		PastAnswers:        pastAnswers,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          updatedAt,
		DeletedAt:          deletedAt,
	}
}

func (m *TranscriptMapper) ToEntities(transcripts []*model.Transcript) []*entity.Transcript {
	entities := make([]*entity.Transcript, len(transcripts))
	for i, t := range transcripts {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *TranscriptMapper) TextToEntity(t *model.TranscriptText) *entity.TranscriptText {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.TranscriptText{
		Id:        t.Id,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *TranscriptMapper) TextToModel(t *entity.TranscriptText) *model.TranscriptText {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.TranscriptText{
		Id:        t.Id,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}
