package mapper

import (
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/model"
)

type QuestionMapper struct{}

func NewQuestionMapper() *QuestionMapper {
	return &QuestionMapper{}
}

func (m *QuestionMapper) ToEntity(q *model.Question) *entity.Question {
	if q == nil {
		return nil
	}

	var updatedAt *time.Time
	if !q.UpdatedAt.IsZero() {
		u := q.UpdatedAt
		updatedAt = &u
	}

	return &entity.Question{
		Id:        q.Id,
		ProjectId: q.ProjectId,
		Question:  q.Question,
		Position:  q.Position,
		CreatedAt: q.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *QuestionMapper) ToModel(q *entity.Question) *model.Question {
	if q == nil {
		return nil
	}

	var updatedAt time.Time
	if q.UpdatedAt != nil {
		updatedAt = *q.UpdatedAt
	}

	return &model.Question{
		Id:        q.Id,
		ProjectId: q.ProjectId,
		Question:  q.Question,
		Position:  q.Position,
		CreatedAt: q.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *QuestionMapper) ToEntities(questions []*model.Question) []*entity.Question {
	entities := make([]*entity.Question, len(questions))
	for i, q := range questions {
		entities[i] = m.ToEntity(q)
	}
	return entities
}

func (m *QuestionMapper) ToModels(questions []*entity.Question) []*model.Question {
	models := make([]*model.Question, len(questions))
	for i, q := range questions {
		models[i] = m.ToModel(q)
	}
	return models
}

func (m *QuestionMapper) ResponseToEntity(r *model.Response) *entity.Response {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		u := r.UpdatedAt
		updatedAt = &u
	}

	return &entity.Response{
		Id:           r.Id,
		TranscriptId: r.TranscriptId,
		QuestionId:   r.QuestionId,
		Response:     r.Response,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *QuestionMapper) ResponseToModel(r *entity.Response) *model.Response {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.Response{
		Id:           r.Id,
		TranscriptId: r.TranscriptId,
		QuestionId:   r.QuestionId,
		Response:     r.Response,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *QuestionMapper) ResponsesToEntities(responses []*model.Response) []*entity.Response {
	entities := make([]*entity.Response, len(responses))
	for i, r := range responses {
		entities[i] = m.ResponseToEntity(r)
	}
	return entities
}
