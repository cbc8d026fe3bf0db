package contract

import (
	"context"
	"time"

	"userlens-be/internal/entity"
	"userlens-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// RecordQuestionGeneration stamps the generation metadata and appends the
	// replaced questions to the archive in a single update.
	RecordQuestionGeneration(ctx context.Context, id uuid.UUID, at time.Time, transcriptCount int, archived []string) error
}
