package service

import (
	"context"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/logger"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/storage"

	"github.com/google/uuid"
)

// Every project starts with this many empty question slots.
const initialQuestionSlots = 10

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectSummaryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
	Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameProjectRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
	objects    storage.ObjectStorage
	log        logger.ILogger
}

func NewProjectService(uowFactory unitofwork.RepositoryFactory, objects storage.ObjectStorage, log logger.ILogger) IProjectService {
	return &projectService{
		uowFactory: uowFactory,
		objects:    objects,
		log:        log,
	}
}

func (s *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project := &entity.Project{
		Id:          uuid.New(),
		ProjectName: req.ProjectName,
		UserId:      userId,
		CreatedAt:   time.Now(),
	}

	// Project and its question slots are created atomically so a failed
	// slot insert never leaves a half-initialized project.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		return nil, err
	}

	slots := make([]*entity.Question, initialQuestionSlots)
	for i := range slots {
		slots[i] = &entity.Question{
			Id:        uuid.New(),
			ProjectId: project.Id,
			Question:  "",
			Position:  i,
			CreatedAt: time.Now(),
		}
	}
	if err := uow.QuestionRepository().CreateBatch(ctx, slots); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateProjectResponse{Id: project.Id}, nil
}

func (s *projectService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ProjectSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProjectSummaryResponse, 0, len(projects))
	for _, p := range projects {
		count, err := uow.TranscriptRepository().Count(ctx, specification.ByProjectID{ProjectID: p.Id})
		if err != nil {
			return nil, err
		}
		res = append(res, &dto.ProjectSummaryResponse{
			Id:                 p.Id,
			ProjectName:        p.ProjectName,
			TranscriptCount:    count,
			QuestionsCreatedAt: p.QuestionsCreatedAt,
			CreatedAt:          p.CreatedAt,
			UpdatedAt:          p.UpdatedAt,
		})
	}
	return res, nil
}

func (s *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("project not found")
	}

	transcripts, err := uow.TranscriptRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: project.Id},
		specification.OrderBy{Field: "transcript_date", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	questions, err := uow.QuestionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: project.Id},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ShowProjectResponse{
		Id:                 project.Id,
		ProjectName:        project.ProjectName,
		Transcripts:        make([]dto.TranscriptSummary, 0, len(transcripts)),
		Questions:          make([]dto.QuestionSummary, 0, len(questions)),
		PastQuestions:      project.PastQuestions,
		QuestionsCreatedAt: project.QuestionsCreatedAt,
		CreatedAt:          project.CreatedAt,
	}

	for _, t := range transcripts {
		res.Transcripts = append(res.Transcripts, dto.TranscriptSummary{
			Id:             t.Id,
			TranscriptName: t.TranscriptName,
			TranscriptDate: t.TranscriptDate,
			Origin:         string(t.Origin),
			UploadStatus:   string(t.UploadStatus),
		})
	}

	// Empty slots are placeholders, not questions to display.
	for _, q := range questions {
		if q.Question == "" {
			continue
		}
		res.Questions = append(res.Questions, dto.QuestionSummary{
			Id:       q.Id,
			Question: q.Question,
			Position: q.Position,
		})
	}

	return res, nil
}

func (s *projectService) Rename(ctx context.Context, userId uuid.UUID, req *dto.RenameProjectRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return serverutils.NotFoundError("project not found")
	}

	project.ProjectName = req.ProjectName
	now := time.Now()
	project.UpdatedAt = &now
	return uow.ProjectRepository().Update(ctx, project)
}

func (s *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return serverutils.NotFoundError("project not found")
	}

	transcripts, err := uow.TranscriptRepository().FindAll(ctx, specification.ByProjectID{ProjectID: id})
	if err != nil {
		return err
	}

	// Stored files go first, best effort. A stale object is preferable to a
	// dangling database row.
	for _, t := range transcripts {
		if t.S3Key == "" {
			continue
		}
		if err := s.objects.Delete(ctx, t.S3Key); err != nil {
			s.log.Warn("project", "failed to delete stored object", map[string]interface{}{
				"transcript_id": t.Id.String(),
				"s3_key":        t.S3Key,
				"error":         err.Error(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, t := range transcripts {
		if err := uow.ResponseRepository().DeleteAllByTranscriptId(ctx, t.Id); err != nil {
			return err
		}
		if err := uow.TranscriptRepository().Delete(ctx, t.Id); err != nil {
			return err
		}
	}

	if err := uow.QuestionRepository().DeleteAllByProjectId(ctx, id); err != nil {
		return err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.ByProjectID{ProjectID: id})
	if err != nil {
		return err
	}
	for _, cs := range sessions {
		if err := uow.ChatSessionRepository().Delete(ctx, cs.Id); err != nil {
			return err
		}
	}

	if err := uow.ProjectRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}
