package contract

import (
	"context"

	"userlens-be/internal/entity"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *entity.Question) error
	CreateBatch(ctx context.Context, questions []*entity.Question) error
	Update(ctx context.Context, question *entity.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProjectId(ctx context.Context, projectId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Question, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Question, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, response *entity.Response) error
	CreateBatch(ctx context.Context, responses []*entity.Response) error
	DeleteAllByTranscriptId(ctx context.Context, transcriptId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Response, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Response, error)
}
