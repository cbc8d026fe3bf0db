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

type TranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TranscriptMapper
}

func NewTranscriptRepository(db *gorm.DB) contract.TranscriptRepository {
	return &TranscriptRepositoryImpl{
		db:     db,
		mapper: mapper.NewTranscriptMapper(),
	}
}

func (r *TranscriptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TranscriptRepositoryImpl) Create(ctx context.Context, transcript *entity.Transcript) error {
	m := r.mapper.ToModel(transcript)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.ToEntity(m)
	return nil
}

func (r *TranscriptRepositoryImpl) Update(ctx context.Context, transcript *entity.Transcript) error {
	m := r.mapper.ToModel(transcript)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.ToEntity(m)
	return nil
}

func (r *TranscriptRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Transcript{}, id).Error
}

func (r *TranscriptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error) {
	var m model.Transcript
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TranscriptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error) {
	var models []*model.Transcript
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *TranscriptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Transcript{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TranscriptRepositoryImpl) SetUploadStatus(ctx context.Context, id uuid.UUID, status entity.UploadStatus) error {
	return r.db.WithContext(ctx).Model(&model.Transcript{}).
		Where("id = ?", id).
		Update("upload_status", string(status)).Error
}

type TranscriptTextRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TranscriptMapper
}

func NewTranscriptTextRepository(db *gorm.DB) contract.TranscriptTextRepository {
	return &TranscriptTextRepositoryImpl{
		db:     db,
		mapper: mapper.NewTranscriptMapper(),
	}
}

func (r *TranscriptTextRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TranscriptTextRepositoryImpl) Create(ctx context.Context, text *entity.TranscriptText) error {
	m := r.mapper.TextToModel(text)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*text = *r.mapper.TextToEntity(m)
	return nil
}

func (r *TranscriptTextRepositoryImpl) Update(ctx context.Context, text *entity.TranscriptText) error {
	m := r.mapper.TextToModel(text)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*text = *r.mapper.TextToEntity(m)
	return nil
}

func (r *TranscriptTextRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TranscriptText{}, id).Error
}

func (r *TranscriptTextRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TranscriptText, error) {
	var m model.TranscriptText
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TextToEntity(&m), nil
}
