package mapper

import (
	"encoding/json"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/model"

	"gorm.io/datatypes"
)

type ChatSessionMapper struct{}

func NewChatSessionMapper() *ChatSessionMapper {
	return &ChatSessionMapper{}
}

func (m *ChatSessionMapper) ToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		u := s.UpdatedAt
		updatedAt = &u
	}

	var conversation []entity.ChatTurn
	if len(s.Conversation) > 0 {
		_ = json.Unmarshal(s.Conversation, &conversation)
	}

	return &entity.ChatSession{
		Id:              s.Id,
		UserId:          s.UserId,
		ChatName:        s.ChatName,
		ProjectId:       s.ProjectId,
		TranscriptId:    s.TranscriptId,
		ChatType:        entity.ChatType(s.ChatType),
		Conversation:    conversation,
		NumInteractions: s.NumInteractions,
		DeleteTime:      s.DeleteTime,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ChatSessionMapper) ToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	conversation := datatypes.JSON("[]")
	if s.Conversation != nil {
		if raw, err := json.Marshal(s.Conversation); err == nil {
			conversation = raw
		}
	}

	return &model.ChatSession{
		Id:              s.Id,
		UserId:          s.UserId,
		ChatName:        s.ChatName,
		ProjectId:       s.ProjectId,
		TranscriptId:    s.TranscriptId,
		ChatType:        string(s.ChatType),
		Conversation:    conversation,
		NumInteractions: s.NumInteractions,
		DeleteTime:      s.DeleteTime,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *ChatSessionMapper) ToEntities(sessions []*model.ChatSession) []*entity.ChatSession {
	entities := make([]*entity.ChatSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
