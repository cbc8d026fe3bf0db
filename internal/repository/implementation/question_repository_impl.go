package implementation

import (
	"context"
	"errors"

	"userlens-be/internal/entity"
	"userlens-be/internal/mapper"
	"userlens-be/internal/model"
	"userlens-be/internal/repository/contract"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuestionMapper
}

func NewQuestionRepository(db *gorm.DB) contract.QuestionRepository {
	return &QuestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuestionMapper(),
	}
}

func (r *QuestionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QuestionRepositoryImpl) Create(ctx context.Context, question *entity.Question) error {
	m := r.mapper.ToModel(question)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*question = *r.mapper.ToEntity(m)
	return nil
}

func (r *QuestionRepositoryImpl) CreateBatch(ctx context.Context, questions []*entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	models := r.mapper.ToModels(questions)
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*questions[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *QuestionRepositoryImpl) Update(ctx context.Context, question *entity.Question) error {
	m := r.mapper.ToModel(question)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*question = *r.mapper.ToEntity(m)
	return nil
}

func (r *QuestionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Question{}, id).Error
}

func (r *QuestionRepositoryImpl) DeleteAllByProjectId(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectId).Delete(&model.Question{}).Error
}

func (r *QuestionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error) {
	var m model.Question
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *QuestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error) {
	var models []*model.Question
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QuestionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Question{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type ResponseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QuestionMapper
}

func NewResponseRepository(db *gorm.DB) contract.ResponseRepository {
	return &ResponseRepositoryImpl{
		db:     db,
		mapper: mapper.NewQuestionMapper(),
	}
}

func (r *ResponseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ResponseRepositoryImpl) Create(ctx context.Context, response *entity.Response) error {
	m := r.mapper.ResponseToModel(response)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*response = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *ResponseRepositoryImpl) CreateBatch(ctx context.Context, responses []*entity.Response) error {
	if len(responses) == 0 {
		return nil
	}
	models := make([]*model.Response, len(responses))
	for i, resp := range responses {
		models[i] = r.mapper.ResponseToModel(resp)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*responses[i] = *r.mapper.ResponseToEntity(m)
	}
	return nil
}

func (r *ResponseRepositoryImpl) DeleteAllByTranscriptId(ctx context.Context, transcriptId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("transcript_id = ?", transcriptId).Delete(&model.Response{}).Error
}

func (r *ResponseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Response, error) {
	var m model.Response
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ResponseToEntity(&m), nil
}

func (r *ResponseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Response, error) {
	var models []*model.Response
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ResponsesToEntities(models), nil
}
