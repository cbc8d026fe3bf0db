package mapper

import (
	"encoding/json"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/model"

	"gorm.io/datatypes"
)

type BotSessionMapper struct{}

func NewBotSessionMapper() *BotSessionMapper {
	return &BotSessionMapper{}
}

func (m *BotSessionMapper) ToEntity(s *model.BotSession) *entity.BotSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		u := s.UpdatedAt
		updatedAt = &u
	}

	var pollingLogs []entity.PollingLogEntry
	if len(s.PollingLogs) > 0 {
		_ = json.Unmarshal(s.PollingLogs, &pollingLogs)
	}

	var eventLogs []entity.EventLogEntry
	if len(s.EventLogs) > 0 {
		_ = json.Unmarshal(s.EventLogs, &eventLogs)
	}

	return &entity.BotSession{
		Id:               s.Id,
		BotId:            s.BotId,
		MeetingURL:       s.MeetingURL,
		MeetingName:      s.MeetingName,
		WebhookURL:       s.WebhookURL,
		StatusCode:       entity.BotStatusCode(s.StatusCode),
		StatusCreatedAt:  s.StatusCreatedAt,
		IsPolling:        s.IsPolling,
		ErrorCount:       s.ErrorCount,
		LastPollTime:     s.LastPollTime,
		PollingLogs:      pollingLogs,
		EventLogs:        eventLogs,
		RecordingURL:     s.RecordingURL,
		TranscriptTextId: s.TranscriptTextId,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *BotSessionMapper) ToModel(s *entity.BotSession) *model.BotSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	pollingLogs := datatypes.JSON("[]")
	if s.PollingLogs != nil {
		if raw, err := json.Marshal(s.PollingLogs); err == nil {
			pollingLogs = raw
		}
	}

	eventLogs := datatypes.JSON("[]")
	if s.EventLogs != nil {
		if raw, err := json.Marshal(s.EventLogs); err == nil {
			eventLogs = raw
		}
	}

	return &model.BotSession{
		Id:               s.Id,
		BotId:            s.BotId,
		MeetingURL:       s.MeetingURL,
		MeetingName:      s.MeetingName,
		WebhookURL:       s.WebhookURL,
		StatusCode:       string(s.StatusCode),
		StatusCreatedAt:  s.StatusCreatedAt,
		IsPolling:        s.IsPolling,
		ErrorCount:       s.ErrorCount,
		LastPollTime:     s.LastPollTime,
		PollingLogs:      pollingLogs,
		EventLogs:        eventLogs,
		RecordingURL:     s.RecordingURL,
		TranscriptTextId: s.TranscriptTextId,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *BotSessionMapper) ToEntities(sessions []*model.BotSession) []*entity.BotSession {
	entities := make([]*entity.BotSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
