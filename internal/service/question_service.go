package service

import (
	"context"
	"time"

	"userlens-be/internal/dto"
	"userlens-be/internal/entity"
	"userlens-be/internal/pkg/serverutils"
	"userlens-be/internal/repository/specification"
	"userlens-be/internal/repository/unitofwork"
	"userlens-be/pkg/transcription"

	"github.com/google/uuid"
)

type IQuestionService interface {
	SetQuestions(ctx context.Context, userId uuid.UUID, req *dto.SetQuestionsRequest) (*dto.SetQuestionsResponse, error)
	ListByProject(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.QuestionSummary, error)
	GenerateAnswers(ctx context.Context, userId uuid.UUID, req *dto.GenerateAnswersRequest) (*dto.GenerateAnswersResponse, error)
}

type questionService struct {
	uowFactory unitofwork.RepositoryFactory
	processing *transcription.Client
}

func NewQuestionService(uowFactory unitofwork.RepositoryFactory, processing *transcription.Client) IQuestionService {
	return &questionService{
		uowFactory: uowFactory,
		processing: processing,
	}
}

// SetQuestions overwrites the project's question slots with the submitted
// list. Slots grow when more questions arrive than exist; previous non-empty
// questions are archived on the project before being replaced.
func (s *questionService) SetQuestions(ctx context.Context, userId uuid.UUID, req *dto.SetQuestionsRequest) (*dto.SetQuestionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("project not found")
	}

	slots, err := uow.QuestionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: project.Id},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	var archived []string
	for _, q := range slots {
		if q.Question != "" {
			archived = append(archived, q.Question)
		}
	}

	transcriptCount, err := uow.TranscriptRepository().Count(ctx, specification.ByProjectID{ProjectID: project.Id})
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	now := time.Now()

	for len(slots) < len(req.Questions) {
		slot := &entity.Question{
			Id:        uuid.New(),
			ProjectId: project.Id,
			Question:  "",
			Position:  len(slots),
			CreatedAt: now,
		}
		if err := uow.QuestionRepository().Create(ctx, slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	for i, slot := range slots {
		text := ""
		if i < len(req.Questions) {
			text = req.Questions[i]
		}
		if slot.Question == text {
			continue
		}
		slot.Question = text
		slot.UpdatedAt = &now
		if err := uow.QuestionRepository().Update(ctx, slot); err != nil {
			return nil, err
		}
	}

	if err := uow.ProjectRepository().RecordQuestionGeneration(ctx, project.Id, now, int(transcriptCount), archived); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	res := &dto.SetQuestionsResponse{Questions: make([]dto.QuestionSummary, 0, len(slots))}
	for _, q := range slots {
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

func (s *questionService) ListByProject(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.QuestionSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("project not found")
	}

	questions, err := uow.QuestionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		res = append(res, &dto.QuestionSummary{
			Id:       q.Id,
			Question: q.Question,
			Position: q.Position,
		})
	}
	return res, nil
}

// GenerateAnswers asks the processing service to answer the project's
// questions against one transcript. The previous active answer set is
// archived on the transcript before being replaced, and each answer is also
// persisted as a Response row.
func (s *questionService) GenerateAnswers(ctx context.Context, userId uuid.UUID, req *dto.GenerateAnswersRequest) (*dto.GenerateAnswersResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	transcript, err := uow.TranscriptRepository().FindOne(ctx, specification.ByID{ID: req.TranscriptId})
	if err != nil {
		return nil, err
	}
	if transcript == nil {
		return nil, serverutils.NotFoundError("transcript not found")
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: transcript.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, serverutils.NotFoundError("transcript not found")
	}

	if transcript.TextId == nil {
		return nil, serverutils.BadRequestError("transcript has no processed text")
	}
	text, err := uow.TranscriptTextRepository().FindOne(ctx, specification.ByID{ID: *transcript.TextId})
	if err != nil {
		return nil, err
	}
	if text == nil {
		return nil, serverutils.BadRequestError("transcript has no processed text")
	}

	slots, err := uow.QuestionRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: project.Id},
		specification.OrderBy{Field: "position", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	questions := make([]*entity.Question, 0, len(slots))
	questionTexts := make([]string, 0, len(slots))
	for _, q := range slots {
		if q.Question == "" {
			continue
		}
		questions = append(questions, q)
		questionTexts = append(questionTexts, q.Question)
	}
	if len(questions) == 0 {
		return nil, serverutils.BadRequestError("project has no questions")
	}

	answers, err := s.processing.AnswerQuestions(ctx, text.Text, questionTexts)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	// Archive the replaced answer set on the transcript.
	if len(transcript.ActiveAnswers) > 0 {
		transcript.PastAnswers = append(transcript.PastAnswers, map[string]interface{}{
			"answers":     transcript.ActiveAnswers,
			"replaced_at": now.Format(time.RFC3339),
		})
	}

	active := make(map[string]interface{}, len(answers))
	responses := make([]*entity.Response, 0, len(questions))
	res := &dto.GenerateAnswersResponse{
		TranscriptId: transcript.Id,
		Answers:      make([]dto.AnswerResponse, 0, len(questions)),
		GeneratedAt:  now,
	}

	for _, q := range questions {
		answer, ok := answers[q.Question]
		if !ok {
			continue
		}
		active[q.Question] = answer
		responses = append(responses, &entity.Response{
			Id:           uuid.New(),
			TranscriptId: transcript.Id,
			QuestionId:   q.Id,
			Response:     answer,
			CreatedAt:    now,
		})
		res.Answers = append(res.Answers, dto.AnswerResponse{
			QuestionId: q.Id,
			Question:   q.Question,
			Answer:     answer,
		})
	}

	transcript.ActiveAnswers = active
	transcript.LastProcessingDate = &now
	transcript.UpdatedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ResponseRepository().CreateBatch(ctx, responses); err != nil {
		return nil, err
	}
	if err := uow.TranscriptRepository().Update(ctx, transcript); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return res, nil
}
