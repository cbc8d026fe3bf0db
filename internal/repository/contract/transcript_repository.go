package contract

import (
	"context"

	"userlens-be/internal/entity"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TranscriptRepository interface {
	Create(ctx context.Context, transcript *entity.Transcript) error
	Update(ctx context.Context, transcript *entity.Transcript) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Transcript, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transcript, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SetUploadStatus changes only the status column, leaving concurrent
	// answer or text updates untouched.
	SetUploadStatus(ctx context.Context, id uuid.UUID, status entity.UploadStatus) error
}

type TranscriptTextRepository interface {
	Create(ctx context.Context, text *entity.TranscriptText) error
	Update(ctx context.Context, text *entity.TranscriptText) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TranscriptText, error)
}
